package service

import (
	"context"

	"github.com/dashanwesha/Code-Editor/internal/domain"
	"github.com/dashanwesha/Code-Editor/internal/nats"
	"github.com/dashanwesha/Code-Editor/internal/redis"
	"github.com/dashanwesha/Code-Editor/internal/websocket"
	"github.com/dashanwesha/Code-Editor/pkg/logger"
)

// RelayService is the broadcast and presence surface the transport layer
// works against. Room fan-out goes to the local hub and, when a bus is
// wired, to the other relay instances; presence passes through to Redis.
// Delivery is best effort, failures are logged and never surfaced to the
// core.
type RelayService interface {
	EmitRoom(roomID string, ev domain.Event)
	EmitRoomExcept(roomID, exceptID string, ev domain.Event)

	AddActiveUser(username string) error
	RemoveActiveUser(username string) error
	ListActiveUsers() ([]string, error)
	IsUserActive(username string) (bool, error)
}

type relayService struct {
	ctx      context.Context
	hub      *websocket.Hub
	bus      *nats.EventBus
	presence *redis.RedisClient
	logger   logger.Logger
}

// NewRelayService composes the local hub with the optional NATS bus and
// Redis presence store. A nil bus means single-instance operation; a nil
// presence store degrades the active-user surface to empty answers.
func NewRelayService(ctx context.Context, hub *websocket.Hub, bus *nats.EventBus, presence *redis.RedisClient) RelayService {
	return &relayService{
		ctx:      ctx,
		hub:      hub,
		bus:      bus,
		presence: presence,
		logger:   logger.FromContext(ctx).WithModule("service"),
	}
}

func (s *relayService) EmitRoom(roomID string, ev domain.Event) {
	s.hub.EmitRoom(roomID, ev)
	if s.bus != nil {
		if err := s.bus.PublishRoom(roomID, ev); err != nil {
			s.logger.Errorf("failed to publish room event: %v", err)
		}
	}
}

func (s *relayService) EmitRoomExcept(roomID, exceptID string, ev domain.Event) {
	s.hub.EmitRoomExcept(roomID, exceptID, ev)
	if s.bus != nil {
		if err := s.bus.PublishRoomExcept(roomID, exceptID, ev); err != nil {
			s.logger.Errorf("failed to publish room event: %v", err)
		}
	}
}

func (s *relayService) AddActiveUser(username string) error {
	if s.presence == nil {
		return nil
	}
	return s.presence.AddActiveUser(s.ctx, username)
}

func (s *relayService) RemoveActiveUser(username string) error {
	if s.presence == nil {
		return nil
	}
	return s.presence.RemoveActiveUser(s.ctx, username)
}

func (s *relayService) ListActiveUsers() ([]string, error) {
	if s.presence == nil {
		return nil, nil
	}
	return s.presence.GetActiveUsers(s.ctx)
}

func (s *relayService) IsUserActive(username string) (bool, error) {
	if s.presence == nil {
		return false, nil
	}
	return s.presence.IsUserActive(s.ctx, username)
}
