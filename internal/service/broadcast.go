package service

import "github.com/freeeve/pacgrid/internal/model"

// Broadcaster sends tick events to spectators.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastTick(rec *model.TickRecord)
}

// NoopBroadcaster is a no-op implementation for testing or when spectating is disabled.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastTick(*model.TickRecord) {}
