package session

import (
	"sync"

	"github.com/dashanwesha/Code-Editor/internal/domain"
	"github.com/dashanwesha/Code-Editor/pkg/logger"
)

// Emitter is the outbound side of the channel abstraction the session
// broadcasts through. EmitRoom delivers to every member of the room,
// EmitRoomExcept suppresses the originating connection.
type Emitter interface {
	EmitRoom(roomID string, ev domain.Event)
	EmitRoomExcept(roomID, exceptID string, ev domain.Event)
}

// Roster is the membership store the session transitions against. The
// in-memory registry satisfies it directly; a Redis-backed roster layers
// shared state on top for multi-instance rooms.
type Roster interface {
	AddMember(roomID, memberID, name string)
	RemoveMember(roomID, memberID string) int
	Snapshot(roomID string) []string
}

// Session is the per-connection state machine. It is either idle (no room,
// no user) or in exactly one room; room and user are set and cleared
// together. All membership transitions for a connection pass through here.
type Session struct {
	id      string
	roster  Roster
	emitter Emitter
	logger  logger.Logger

	mu   sync.RWMutex
	room string
	user string
}

func New(id string, roster Roster, emitter Emitter, logg logger.Logger) *Session {
	return &Session{
		id:      id,
		roster:  roster,
		emitter: emitter,
		logger:  logg,
	}
}

// ID returns the connection identity this session was created with.
func (s *Session) ID() string { return s.id }

// Room returns the current room identifier, empty while idle.
func (s *Session) Room() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room
}

// User returns the current display name, empty while idle.
func (s *Session) User() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Join moves the session into roomID under userName. A session already in a
// room leaves it first, so a connection is a member of at most one room.
// The new room's full roster is broadcast to every member including the
// sender. A join with a missing room or name is dropped.
func (s *Session) Join(roomID, userName string) {
	if roomID == "" || userName == "" {
		s.logger.Debugf("join dropped: empty room or user")
		return
	}

	s.mu.Lock()
	prevRoom := s.room
	if prevRoom != "" {
		s.roster.RemoveMember(prevRoom, s.id)
	}
	s.room = roomID
	s.user = userName
	s.roster.AddMember(roomID, s.id, userName)
	members := s.roster.Snapshot(roomID)
	s.mu.Unlock()

	// Broadcasts happen outside the session lock; the emitter reads session
	// state to target connections.
	if prevRoom != "" && prevRoom != roomID {
		if remaining := s.roster.Snapshot(prevRoom); len(remaining) > 0 {
			s.emitter.EmitRoom(prevRoom, domain.Event{
				Type:    domain.EventUserJoined,
				Room:    prevRoom,
				Members: remaining,
			})
		}
	}
	s.emitter.EmitRoom(roomID, domain.Event{
		Type:    domain.EventUserJoined,
		Room:    roomID,
		Members: members,
	})
	s.logger.Infof("user %s joined room %s", userName, roomID)
}

// Leave removes the session from its current room and returns it to idle.
// The shrunk roster is broadcast to the remaining members; an emptied room
// is torn down with no broadcast since nobody is left to receive one.
// Calling Leave while idle is a no-op.
func (s *Session) Leave() {
	s.mu.Lock()
	room, user := s.room, s.user
	if room == "" {
		s.mu.Unlock()
		return
	}
	remaining := s.roster.RemoveMember(room, s.id)
	s.room = ""
	s.user = ""
	s.mu.Unlock()

	if remaining > 0 {
		s.emitter.EmitRoom(room, domain.Event{
			Type:    domain.EventUserJoined,
			Room:    room,
			Members: s.roster.Snapshot(room),
		})
	}
	s.logger.Infof("user %s left room %s", user, room)
}

// Disconnect is the implicit leave when the underlying channel closes. It is
// safe to call in any state and any number of times.
func (s *Session) Disconnect() {
	s.Leave()
}

// CodeChange relays an edit to everyone else in the room. The sender already
// holds the authoritative local buffer, so the event is echo-suppressed.
// Dropped while idle.
func (s *Session) CodeChange(code string) {
	s.mu.RLock()
	room := s.room
	s.mu.RUnlock()
	if room == "" {
		return
	}
	s.emitter.EmitRoomExcept(room, s.id, domain.Event{
		Type: domain.EventCodeUpdate,
		Room: room,
		Code: code,
	})
}

// Typing notifies everyone else in the room that this user is typing.
// Dropped while idle.
func (s *Session) Typing() {
	s.mu.RLock()
	room, user := s.room, s.user
	s.mu.RUnlock()
	if room == "" {
		return
	}
	s.emitter.EmitRoomExcept(room, s.id, domain.Event{
		Type:     domain.EventUserTyping,
		Room:     room,
		UserName: user,
	})
}

// LanguageChange broadcasts the selected language to the whole room,
// sender included, so every view stays synchronized from one source of
// truth. Dropped while idle.
func (s *Session) LanguageChange(language string) {
	s.mu.RLock()
	room := s.room
	s.mu.RUnlock()
	if room == "" || language == "" {
		return
	}
	s.emitter.EmitRoom(room, domain.Event{
		Type:     domain.EventLanguageUpdate,
		Room:     room,
		Language: language,
	})
}
