package domain

import "time"

type Message struct {
	ID         int
	RoomID     int
	Sender     string
	SenderName string
	Content    string
	CreatedAt  time.Time
}

func NewMessage(id, roomID int, sender, senderName, content string, createdAt time.Time) Message {
	return Message{
		ID:         id,
		RoomID:     roomID,
		Sender:     sender,
		SenderName: senderName,
		Content:    content,
		CreatedAt:  createdAt,
	}
}

// User is the stored participant record. No is the surrogate key used by
// rooms and messages; UserID is the login name clients send.
type User struct {
	No       int
	UserID   string
	FullName string
}

// Translation is what the inference service returned for one input.
type Translation struct {
	Gloss string
	Meta  map[string]any
}

// Mapping is the dictionary outcome for a token sequence. URLs follow token
// order including duplicates; Misses lists tokens with no entry.
type Mapping struct {
	URLs   []string
	Misses []string
}

func (m Mapping) Complete() bool {
	return len(m.Misses) == 0
}

// Sentence is the result of finishing a landmark stream.
type Sentence struct {
	Text   string
	Tokens []string
}

func (s Sentence) IsEmpty() bool {
	return s.Text == ""
}
