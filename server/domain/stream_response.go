package domain

// Receive is the payload delivered to every connection in a room.
type Receive struct {
	Sender     string
	SenderName string
	Message    string
	Gloss      string
	URLs       []string
	Miss       []string
	Time       string
}

type StreamResponse struct {
	Room    string
	Receive Receive
	Trace   string
	Error   error
}

func NewStreamResponse(room string, receive Receive) StreamResponse {
	return StreamResponse{
		Room:    room,
		Receive: receive,
	}
}

func NewStreamError(trace string, err error) StreamResponse {
	return StreamResponse{
		Trace: trace,
		Error: err,
	}
}

func (r StreamResponse) IsError() bool {
	return r.Error != nil
}

func (r StreamResponse) String() string {
	if r.IsError() {
		return "error[" + r.Trace + "]: " + r.Error.Error()
	}
	return r.Receive.SenderName + "@" + r.Room + ": " + r.Receive.Message
}
