package domain

import (
	"time"
)

// StreamSession is one live connection. UserID is empty until the client
// identifies itself with a join or send.
type StreamSession struct {
	ID          string
	UserID      string
	Remote      string
	ConnectedAt time.Time
}

func NewStreamSession(id, remote string) StreamSession {
	return StreamSession{
		ID:          id,
		Remote:      remote,
		ConnectedAt: time.Now(),
	}
}

func (s StreamSession) IsValid() bool {
	return s.ID != ""
}

func (s StreamSession) String() string {
	name := s.UserID
	if name == "" {
		name = "anonymous"
	}
	return name + "(" + s.ID + ")@" + s.Remote
}
