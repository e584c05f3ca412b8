package rpc

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

type ClientMessageType string

const (
	ClientJoin     ClientMessageType = "join"
	ClientLeave    ClientMessageType = "leave"
	ClientSend     ClientMessageType = "send"
	ClientLandmark ClientMessageType = "landmark"
)

// ClientMessage is what a client pushes on the StreamMessage channel.
type ClientMessage struct {
	Type   ClientMessageType
	Room   string
	RoomID int
	User   string
	Text   string
	Frame  []float64
	End    bool
}

func NewJoin(room, user string) ClientMessage {
	return ClientMessage{Type: ClientJoin, Room: room, User: user}
}

func NewLeave(room, user string) ClientMessage {
	return ClientMessage{Type: ClientLeave, Room: room, User: user}
}

func NewSend(room string, roomID int, user, text string) ClientMessage {
	return ClientMessage{Type: ClientSend, Room: room, RoomID: roomID, User: user, Text: text}
}

func NewLandmark(room string, roomID int, user string, frame []float64, end bool) ClientMessage {
	return ClientMessage{Type: ClientLandmark, Room: room, RoomID: roomID, User: user, Frame: frame, End: end}
}

func (m ClientMessage) ToStruct() (*structpb.Struct, error) {
	fields := map[string]any{
		"type":    string(m.Type),
		"room":    m.Room,
		"room_id": m.RoomID,
		"user":    m.User,
	}
	switch m.Type {
	case ClientSend:
		fields["text"] = m.Text
	case ClientLandmark:
		frame := make([]any, len(m.Frame))
		for i, v := range m.Frame {
			frame[i] = v
		}
		fields["frame"] = frame
		fields["end"] = m.End
	}
	return structpb.NewStruct(fields)
}

func ClientMessageFromStruct(s *structpb.Struct) (ClientMessage, error) {
	if s == nil {
		return ClientMessage{}, fmt.Errorf("empty client message")
	}
	f := s.GetFields()
	m := ClientMessage{
		Type:   ClientMessageType(f["type"].GetStringValue()),
		Room:   f["room"].GetStringValue(),
		RoomID: int(f["room_id"].GetNumberValue()),
		User:   f["user"].GetStringValue(),
		Text:   f["text"].GetStringValue(),
		End:    f["end"].GetBoolValue(),
	}
	if list := f["frame"].GetListValue(); list != nil {
		m.Frame = make([]float64, 0, len(list.GetValues()))
		for _, v := range list.GetValues() {
			m.Frame = append(m.Frame, v.GetNumberValue())
		}
	}
	switch m.Type {
	case ClientJoin, ClientLeave, ClientSend, ClientLandmark:
		return m, nil
	default:
		return ClientMessage{}, fmt.Errorf("unknown client message type %q", m.Type)
	}
}

// ServerMessage is the receive payload fanned out to a room.
type ServerMessage struct {
	Sender     string
	SenderName string
	Message    string
	Gloss      string
	URLs       []string
	Miss       []string
	Time       string
}

func (m ServerMessage) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"sender":      m.Sender,
		"sender_name": m.SenderName,
		"message":     m.Message,
		"gloss":       m.Gloss,
		"urls":        toAnyList(m.URLs),
		"miss":        toAnyList(m.Miss),
		"time":        m.Time,
	})
}

func ServerMessageFromStruct(s *structpb.Struct) ServerMessage {
	f := s.GetFields()
	return ServerMessage{
		Sender:     f["sender"].GetStringValue(),
		SenderName: f["sender_name"].GetStringValue(),
		Message:    f["message"].GetStringValue(),
		Gloss:      f["gloss"].GetStringValue(),
		URLs:       StringList(f["urls"]),
		Miss:       StringList(f["miss"]),
		Time:       f["time"].GetStringValue(),
	}
}

// HistoryMessage is one row of ListMessages.
type HistoryMessage struct {
	Sender     string
	SenderName string
	Message    string
	Date       string
}

func HistoryToStruct(messages []HistoryMessage) (*structpb.Struct, error) {
	list := make([]any, len(messages))
	for i, m := range messages {
		list[i] = map[string]any{
			"sender":      m.Sender,
			"sender_name": m.SenderName,
			"message":     m.Message,
			"date":        m.Date,
		}
	}
	return structpb.NewStruct(map[string]any{"messages": list})
}

func HistoryFromStruct(s *structpb.Struct) []HistoryMessage {
	values := s.GetFields()["messages"].GetListValue().GetValues()
	messages := make([]HistoryMessage, 0, len(values))
	for _, v := range values {
		f := v.GetStructValue().GetFields()
		messages = append(messages, HistoryMessage{
			Sender:     f["sender"].GetStringValue(),
			SenderName: f["sender_name"].GetStringValue(),
			Message:    f["message"].GetStringValue(),
			Date:       f["date"].GetStringValue(),
		})
	}
	return messages
}

// TranslateResult mirrors the Translate response body.
type TranslateResult struct {
	Gloss      string
	CleanGloss string
	URLs       []string
	Miss       []string
	Meta       map[string]any
}

func (r TranslateResult) ToStruct() (*structpb.Struct, error) {
	meta := r.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	return structpb.NewStruct(map[string]any{
		"gloss":       r.Gloss,
		"clean_gloss": r.CleanGloss,
		"urls":        toAnyList(r.URLs),
		"miss":        toAnyList(r.Miss),
		"meta":        meta,
	})
}

func TranslateResultFromStruct(s *structpb.Struct) TranslateResult {
	f := s.GetFields()
	return TranslateResult{
		Gloss:      f["gloss"].GetStringValue(),
		CleanGloss: f["clean_gloss"].GetStringValue(),
		URLs:       StringList(f["urls"]),
		Miss:       StringList(f["miss"]),
		Meta:       f["meta"].GetStructValue().AsMap(),
	}
}

func StringList(v *structpb.Value) []string {
	values := v.GetListValue().GetValues()
	out := make([]string, 0, len(values))
	for _, item := range values {
		out = append(out, item.GetStringValue())
	}
	return out
}

func toAnyList(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}
