package domain

import (
	"fmt"
	"time"
)

type StreamRequestType int

const (
	RequestJoin StreamRequestType = iota
	RequestLeave
	RequestSend
	RequestLandmark
)

func (t StreamRequestType) String() string {
	switch t {
	case RequestJoin:
		return "join"
	case RequestLeave:
		return "leave"
	case RequestSend:
		return "send"
	case RequestLandmark:
		return "landmark"
	default:
		return "unknown"
	}
}

// StreamRequest is a decoded inbound transport event. Room may be empty when
// the client only knows the numeric room id; see ResolveRoom.
type StreamRequest struct {
	Type   StreamRequestType
	Room   string
	RoomID int
	UserID string
	Text   string
	Frame  Frame
	End    bool
}

func NewJoinRequest(room, userID string) StreamRequest {
	return StreamRequest{Type: RequestJoin, Room: room, UserID: userID}
}

func NewLeaveRequest(room, userID string) StreamRequest {
	return StreamRequest{Type: RequestLeave, Room: room, UserID: userID}
}

func NewSendRequest(room string, roomID int, userID, text string) StreamRequest {
	return StreamRequest{Type: RequestSend, Room: room, RoomID: roomID, UserID: userID, Text: text}
}

func NewLandmarkRequest(room string, roomID int, userID string, frame Frame, end bool) StreamRequest {
	return StreamRequest{Type: RequestLandmark, Room: room, RoomID: roomID, UserID: userID, Frame: frame, End: end}
}

// ResolveRoom returns the broadcast key for the request.
func (r StreamRequest) ResolveRoom() string {
	if r.Room != "" {
		return r.Room
	}
	if r.RoomID > 0 {
		return RoomKeyFromID(r.RoomID)
	}
	return ""
}

func (r StreamRequest) IsValid() bool {
	if r.ResolveRoom() == "" {
		return false
	}
	switch r.Type {
	case RequestJoin, RequestLeave:
		return true
	case RequestSend:
		return r.UserID != ""
	case RequestLandmark:
		return r.UserID != "" && (r.End || len(r.Frame) > 0)
	default:
		return false
	}
}

// ToEvent converts a send or landmark request into a pipeline event.
func (r StreamRequest) ToEvent(at time.Time) (Event, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %s request", ErrInvalidInput, r.Type)
	}
	switch r.Type {
	case RequestSend:
		return NewTextEvent(r.ResolveRoom(), r.RoomID, r.UserID, r.Text, at), nil
	case RequestLandmark:
		return NewLandmarkEvent(r.ResolveRoom(), r.RoomID, r.UserID, r.Frame, r.End, at), nil
	default:
		return nil, fmt.Errorf("%w: %s is not a message event", ErrInvalidInput, r.Type)
	}
}

func (r StreamRequest) String() string {
	switch r.Type {
	case RequestJoin, RequestLeave:
		return r.Type.String() + ": " + r.UserID + " -> " + r.ResolveRoom()
	case RequestSend:
		return fmt.Sprintf("%s: %s -> %s len=%d", r.Type, r.UserID, r.ResolveRoom(), len(r.Text))
	case RequestLandmark:
		return fmt.Sprintf("%s: %s -> %s frame=%d end=%t", r.Type, r.UserID, r.ResolveRoom(), len(r.Frame), r.End)
	default:
		return r.Type.String()
	}
}
