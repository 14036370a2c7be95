package document

import (
	"github.com/rs/zerolog"

	"github.com/faizahmd2/realtime-editor/internal/observability"
)

// Broadcaster fans a message out to every registered session, optionally
// skipping the sender. Membership is self-healing: a failed send evicts
// that session immediately and the fan-out continues with the rest.
// Delivery order across sessions is unspecified.
type Broadcaster struct {
	registry *SessionRegistry
	logger   zerolog.Logger
}

// NewBroadcaster creates a broadcaster over the given registry.
func NewBroadcaster(registry *SessionRegistry, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, logger: logger}
}

// Broadcast sends msg to every session whose id differs from excludeID.
// Pass an empty excludeID to reach everyone. Returns the number of
// successful sends.
func (b *Broadcaster) Broadcast(msg interface{}, excludeID string) int {
	success := 0
	failed := 0

	for _, sess := range b.registry.All() {
		if sess.ID == excludeID {
			continue
		}
		if err := sess.Send(msg); err != nil {
			b.Evict(sess, err)
			failed++
			continue
		}
		success++
	}

	observability.BroadcastDelivered(success, failed)
	return success
}

// Evict removes a session whose transport failed and closes it. Subsequent
// broadcasts never see the session again.
func (b *Broadcaster) Evict(sess *Session, cause error) {
	if !b.registry.Unregister(sess.ID) {
		return
	}
	sess.Close()
	observability.SessionEvicted()
	observability.SessionClosed()
	b.logger.Warn().
		Err(cause).
		Str("sessionId", sess.ID).
		Msg("Send failed, session evicted")
}
