package domain

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

type streamManagerImpl struct {
	mu        sync.RWMutex
	rooms     map[string]map[string]struct{}
	sessions  map[string]*sessionEntry
	startTime time.Time

	totalMessages   atomic.Int64
	droppedMessages atomic.Int64
}

type sessionEntry struct {
	session      StreamSession
	responseChan chan<- StreamResponse
	rooms        map[string]struct{}
}

func NewStreamManager() StreamManager {
	return &streamManagerImpl{
		rooms:     make(map[string]map[string]struct{}),
		sessions:  make(map[string]*sessionEntry),
		startTime: time.Now(),
	}
}

func (sm *streamManagerImpl) RegisterSession(session StreamSession, responseChan chan<- StreamResponse) error {
	if !session.IsValid() {
		return fmt.Errorf("%w: empty session id", ErrInvalidInput)
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[session.ID]; exists {
		return fmt.Errorf("session already registered: %s", session.ID)
	}
	sm.sessions[session.ID] = &sessionEntry{
		session:      session,
		responseChan: responseChan,
		rooms:        make(map[string]struct{}),
	}
	return nil
}

func (sm *streamManagerImpl) UnregisterSession(sessionID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	entry, exists := sm.sessions[sessionID]
	if !exists {
		return nil
	}
	for room := range entry.rooms {
		sm.removeMemberLocked(room, sessionID)
	}
	delete(sm.sessions, sessionID)
	return nil
}

func (sm *streamManagerImpl) JoinRoom(sessionID, room string) error {
	if room == "" {
		return fmt.Errorf("%w: empty room key", ErrInvalidInput)
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()

	entry, exists := sm.sessions[sessionID]
	if !exists {
		return fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	members, ok := sm.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		sm.rooms[room] = members
	}
	members[sessionID] = struct{}{}
	entry.rooms[room] = struct{}{}
	return nil
}

func (sm *streamManagerImpl) LeaveRoom(sessionID, room string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if entry, exists := sm.sessions[sessionID]; exists {
		delete(entry.rooms, room)
	}
	sm.removeMemberLocked(room, sessionID)
	return nil
}

func (sm *streamManagerImpl) removeMemberLocked(room, sessionID string) {
	members, ok := sm.rooms[room]
	if !ok {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(sm.rooms, room)
	}
}

// Broadcast delivers to the members of room at the time of the call. Sends
// never block: a member whose buffer is full is skipped. The read lock is
// held across the sends so that a session cannot be unregistered (and its
// channel closed) mid-delivery.
func (sm *streamManagerImpl) Broadcast(room string, response StreamResponse) PublishResult {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var result PublishResult
	for sessionID := range sm.rooms[room] {
		entry, exists := sm.sessions[sessionID]
		if !exists {
			result.Skipped++
			continue
		}
		select {
		case entry.responseChan <- response:
			result.Sent++
		default:
			result.Skipped++
		}
	}
	sm.totalMessages.Add(1)
	sm.droppedMessages.Add(int64(result.Skipped))
	return result
}

func (sm *streamManagerImpl) SendToSession(sessionID string, response StreamResponse) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	entry, exists := sm.sessions[sessionID]
	if !exists {
		return fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	select {
	case entry.responseChan <- response:
		return nil
	default:
		sm.droppedMessages.Add(1)
		return fmt.Errorf("session response channel is full: %s", sessionID)
	}
}

func (sm *streamManagerImpl) GetSession(sessionID string) (StreamSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	entry, exists := sm.sessions[sessionID]
	if !exists {
		return StreamSession{}, false
	}
	return entry.session, true
}

func (sm *streamManagerImpl) SetSessionUser(sessionID, userID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	entry, exists := sm.sessions[sessionID]
	if !exists {
		return fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	entry.session.UserID = userID
	return nil
}

func (sm *streamManagerImpl) UserSessionCount(userID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	n := 0
	for _, entry := range sm.sessions {
		if entry.session.UserID == userID {
			n++
		}
	}
	return n
}

func (sm *streamManagerImpl) SessionRooms(sessionID string) []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	entry, exists := sm.sessions[sessionID]
	if !exists {
		return []string{}
	}
	rooms := make([]string, 0, len(entry.rooms))
	for room := range entry.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (sm *streamManagerImpl) IsRoomActive(room string) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	_, exists := sm.rooms[room]
	return exists
}

func (sm *streamManagerImpl) GetActiveRooms() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	rooms := make([]string, 0, len(sm.rooms))
	for room := range sm.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (sm *streamManagerImpl) GetRoomClientCount(room string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return len(sm.rooms[room])
}

func (sm *streamManagerImpl) IsSessionRegistered(sessionID string) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	_, exists := sm.sessions[sessionID]
	return exists
}

func (sm *streamManagerImpl) GetRegisteredSessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return len(sm.sessions)
}

func (sm *streamManagerImpl) Cleanup() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.rooms = make(map[string]map[string]struct{})
	sm.sessions = make(map[string]*sessionEntry)
	sm.totalMessages.Store(0)
	sm.droppedMessages.Store(0)
	return nil
}

func (sm *streamManagerImpl) GetStats() StreamStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return StreamStats{
		ActiveRooms:     len(sm.rooms),
		ActiveSessions:  len(sm.sessions),
		TotalMessages:   sm.totalMessages.Load(),
		DroppedMessages: sm.droppedMessages.Load(),
		Uptime:          time.Since(sm.startTime).String(),
	}
}
