package registry

import "sync"

// room tracks membership keyed by connection identity. The display name is
// an attribute, so two connections sharing a name stay two distinct members
// and one leaving cannot evict the other.
type room struct {
	members map[string]string // memberID -> display name
}

// Registry is the process-wide room map. It is constructed explicitly and
// passed to whoever needs it; all mutation goes through AddMember and
// RemoveMember so a room can never outlive its last member.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*room
}

func New() *Registry {
	return &Registry{rooms: make(map[string]*room)}
}

// ensure returns the room for roomID, creating it if absent. Callers must
// hold r.mu and must add a member before releasing it, otherwise an empty
// room would be left behind.
func (r *Registry) ensure(roomID string) *room {
	rm := r.rooms[roomID]
	if rm == nil {
		rm = &room{members: make(map[string]string)}
		r.rooms[roomID] = rm
	}
	return rm
}

// AddMember inserts the member into the room, creating the room on first
// join. Adding the same member twice is a no-op.
func (r *Registry) AddMember(roomID, memberID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensure(roomID).members[memberID] = name
}

// RemoveMember removes the member if present and deletes the room entry the
// moment it empties. It returns the remaining member count, 0 when the room
// no longer exists or never did. Removal is idempotent and never fails.
func (r *Registry) RemoveMember(roomID, memberID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm := r.rooms[roomID]
	if rm == nil {
		return 0
	}
	delete(rm.members, memberID)
	if len(rm.members) == 0 {
		delete(r.rooms, roomID)
		return 0
	}
	return len(rm.members)
}

// Snapshot returns the current roster of display names for broadcast, or nil
// if the room does not exist. Order is unspecified; names repeat when two
// members share one.
func (r *Registry) Snapshot(roomID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm := r.rooms[roomID]
	if rm == nil {
		return nil
	}
	names := make([]string, 0, len(rm.members))
	for _, name := range rm.members {
		names = append(names, name)
	}
	return names
}

// Rooms returns the identifiers of all live rooms.
func (r *Registry) Rooms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	return ids
}
