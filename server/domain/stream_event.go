package domain

import (
	"fmt"
	"time"
)

// Frame is one sample of pose and hand keypoints.
type Frame []float64

type EventHeader struct {
	Room       string
	RoomID     int
	UserID     string
	ReceivedAt time.Time
}

// Event is the unit processed by the pipeline. It is either a TextEvent or a
// LandmarkEvent.
type Event interface {
	Header() EventHeader
	isEvent()
}

type TextEvent struct {
	EventHeader
	Text string
}

type LandmarkEvent struct {
	EventHeader
	Frame Frame
	End   bool
}

func (e TextEvent) Header() EventHeader     { return e.EventHeader }
func (e LandmarkEvent) Header() EventHeader { return e.EventHeader }

func (TextEvent) isEvent()     {}
func (LandmarkEvent) isEvent() {}

func NewTextEvent(room string, roomID int, userID, text string, at time.Time) TextEvent {
	return TextEvent{
		EventHeader: EventHeader{Room: room, RoomID: roomID, UserID: userID, ReceivedAt: at},
		Text:        text,
	}
}

func NewLandmarkEvent(room string, roomID int, userID string, frame Frame, end bool, at time.Time) LandmarkEvent {
	return LandmarkEvent{
		EventHeader: EventHeader{Room: room, RoomID: roomID, UserID: userID, ReceivedAt: at},
		Frame:       frame,
		End:         end,
	}
}

func (e TextEvent) String() string {
	return fmt.Sprintf("text: %s@%s(%d) len=%d", e.UserID, e.Room, e.RoomID, len(e.Text))
}

func (e LandmarkEvent) String() string {
	if e.End {
		return fmt.Sprintf("landmark: %s@%s(%d) end", e.UserID, e.Room, e.RoomID)
	}
	return fmt.Sprintf("landmark: %s@%s(%d) frame=%d", e.UserID, e.Room, e.RoomID, len(e.Frame))
}

// Window is the batch of frames handed to gesture recognition. Seq counts
// windows per user stream starting at 1.
type Window struct {
	UserID string
	Seq    int
	Frames []Frame
}
