package domain

import (
	"sort"
	"strconv"
	"strings"
)

type RoomService interface {
	// JoinRoom and LeaveRoom are idempotent.
	JoinRoom(sessionID, room string) error
	LeaveRoom(sessionID, room string) error

	GetSession(sessionID string) (StreamSession, bool)
	SetSessionUser(sessionID, userID string) error
	SessionRooms(sessionID string) []string
	// UserSessionCount counts live sessions last used by userID.
	UserSessionCount(userID string) int

	IsRoomActive(room string) bool
	GetActiveRooms() []string
	GetRoomClientCount(room string) int
}

type MessageBroadcaster interface {
	Broadcast(room string, response StreamResponse) PublishResult
	SendToSession(sessionID string, response StreamResponse) error

	// RegisterSession creates the connection; UnregisterSession destroys it
	// and releases every room it joined.
	RegisterSession(session StreamSession, responseChan chan<- StreamResponse) error
	UnregisterSession(sessionID string) error

	IsSessionRegistered(sessionID string) bool
	GetRegisteredSessionCount() int
}

type StreamManager interface {
	RoomService
	MessageBroadcaster

	Cleanup() error
	GetStats() StreamStats
}

type StreamStats struct {
	ActiveRooms     int
	ActiveSessions  int
	TotalMessages   int64
	DroppedMessages int64
	Uptime          string
}

// PublishResult counts deliveries for one broadcast. Skipped connections had
// a full outbound buffer.
type PublishResult struct {
	Sent    int
	Skipped int
}

// PairRoomKey derives the room key for a two-person conversation. The key is
// the same regardless of argument order.
func PairRoomKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

func RoomKeyFromID(id int) string {
	return "room:" + strconv.Itoa(id)
}
