package service

import (
	"context"

	"github.com/dashanwesha/Code-Editor/internal/registry"
	"github.com/dashanwesha/Code-Editor/internal/session"
	"github.com/dashanwesha/Code-Editor/pkg/logger"
)

// roomStore is the shared membership store behind a multi-instance roster.
type roomStore interface {
	AddRoomMember(ctx context.Context, roomID, memberID, name string) error
	RemoveRoomMember(ctx context.Context, roomID, memberID string) (int, error)
	RoomMembers(ctx context.Context, roomID string) ([]string, error)
}

// sharedRoster mirrors every membership change into the shared store and
// reads broadcast rosters back from it, so rosters include members joined
// on other relay instances. The local registry stays authoritative for this
// instance; store failures are logged and the roster degrades to the local
// view rather than surfacing an error into the core.
type sharedRoster struct {
	ctx    context.Context
	local  *registry.Registry
	store  roomStore
	logger logger.Logger
}

func NewSharedRoster(ctx context.Context, local *registry.Registry, store roomStore) session.Roster {
	return &sharedRoster{
		ctx:    ctx,
		local:  local,
		store:  store,
		logger: logger.FromContext(ctx).WithModule("roster"),
	}
}

func (s *sharedRoster) AddMember(roomID, memberID, name string) {
	s.local.AddMember(roomID, memberID, name)
	if err := s.store.AddRoomMember(s.ctx, roomID, memberID, name); err != nil {
		s.logger.Errorf("failed to mirror member into shared room %s: %v", roomID, err)
	}
}

func (s *sharedRoster) RemoveMember(roomID, memberID string) int {
	remaining := s.local.RemoveMember(roomID, memberID)
	shared, err := s.store.RemoveRoomMember(s.ctx, roomID, memberID)
	if err != nil {
		s.logger.Errorf("failed to remove member from shared room %s: %v", roomID, err)
		return remaining
	}
	// The shared count includes other instances' members; the local count
	// guards against a store that lost state.
	if shared > remaining {
		return shared
	}
	return remaining
}

func (s *sharedRoster) Snapshot(roomID string) []string {
	names, err := s.store.RoomMembers(s.ctx, roomID)
	if err != nil {
		s.logger.Errorf("failed to read shared room %s: %v", roomID, err)
		return s.local.Snapshot(roomID)
	}
	if len(names) == 0 {
		return s.local.Snapshot(roomID)
	}
	return names
}
