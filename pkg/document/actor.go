package document

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/faizahmd2/realtime-editor/internal/observability"
)

// ErrStopped is returned when an event is posted to an actor that has been
// reclaimed. Callers obtain a fresh actor from the Manager and retry.
var ErrStopped = errors.New("document actor stopped")

// Gateway is the persistence surface the actor depends on. Both methods
// swallow storage failures: Load reports absence, Save reports false.
type Gateway interface {
	Load(ctx context.Context, id string) (content string, found bool)
	Save(ctx context.Context, id, content string) bool
}

type event interface{}

type connectEvent struct{ sess *Session }

type disconnectEvent struct{ sessionID string }

type editEvent struct {
	sessionID string
	content   string
}

type saveRequestEvent struct{ done chan bool }

type saveRequest struct {
	content string
	done    chan bool
}

// Actor owns the authoritative state of one document. Every connection
// lifecycle event and edit for the document flows through a single channel
// and is processed by one goroutine, so content and the session set need
// no locks. Saves run on a dedicated persister goroutine per actor, which
// serializes writes for the document without stalling the event loop.
//
// Actors are stateless across instantiations: a reclaimed actor's document
// is re-hydrated from the gateway the next time someone connects to its id.
type Actor struct {
	id       string
	gateway  Gateway
	interval time.Duration
	logger   zerolog.Logger

	events        chan event
	saves         chan saveRequest
	ctx           context.Context
	cancel        context.CancelFunc
	done          chan struct{}
	persisterDone chan struct{}

	// Owned by the run goroutine.
	content   string
	hydrated  bool
	lastSaved time.Time
	registry  *SessionRegistry
	fanout    *Broadcaster

	// Read by the janitor without going through the event loop.
	lastActivity atomic.Int64
	sessionCount atomic.Int32
}

// NewActor spawns the actor and its persister goroutine. interval is both
// the debounce window and the periodic durability tick period.
func NewActor(id string, gateway Gateway, interval time.Duration, logger zerolog.Logger) *Actor {
	ctx, cancel := context.WithCancel(context.Background())

	a := &Actor{
		id:            id,
		gateway:       gateway,
		interval:      interval,
		logger:        logger.With().Str("documentId", id).Logger(),
		events:        make(chan event, 64),
		saves:         make(chan saveRequest, 1),
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
		persisterDone: make(chan struct{}),
	}
	a.registry = NewSessionRegistry()
	a.fanout = NewBroadcaster(a.registry, a.logger)
	a.touch()

	go a.run()
	go a.persister()

	return a
}

// ID returns the document id this actor owns.
func (a *Actor) ID() string {
	return a.id
}

// Connect registers a new session: the client receives the current content
// as a full snapshot followed by a status message, and everyone else is
// told the new connection count. The first connection hydrates the
// document from storage before any content is sent.
func (a *Actor) Connect(sess *Session) error {
	return a.post(connectEvent{sess: sess})
}

// Disconnect removes a session and announces the new connection count. If
// it was the last session and the document has content, an immediate save
// runs before further events are processed.
func (a *Actor) Disconnect(sessionID string) {
	// Best effort; a stopped actor has already closed its sessions.
	_ = a.post(disconnectEvent{sessionID: sessionID})
}

// ApplyEdit replaces the document content (last write wins) and fans the
// new content out to every session except the sender.
func (a *Actor) ApplyEdit(sessionID, content string) error {
	return a.post(editEvent{sessionID: sessionID, content: content})
}

// RequestSave forces an immediate save, bypassing the debounce window. It
// returns once the save completed; ok reports whether a durable write
// actually happened (blank documents are never written).
func (a *Actor) RequestSave(ctx context.Context) (bool, error) {
	done := make(chan bool, 1)
	if err := a.post(saveRequestEvent{done: done}); err != nil {
		return false, err
	}
	select {
	case ok := <-done:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-a.ctx.Done():
		return false, ErrStopped
	}
}

// Stop shuts the actor down and waits for the event loop and the persister
// to drain. Open sessions are closed and non-blank content gets a final
// save before Stop returns.
func (a *Actor) Stop() {
	a.cancel()
	<-a.done
	<-a.persisterDone
}

// Stopped reports whether the actor has been shut down.
func (a *Actor) Stopped() bool {
	select {
	case <-a.ctx.Done():
		return true
	default:
		return false
	}
}

// Sessions returns the current number of registered sessions.
func (a *Actor) Sessions() int {
	return int(a.sessionCount.Load())
}

// Idle reports whether the actor has no sessions and has seen no activity
// for longer than maxIdle. Used by the janitor to reclaim actors.
func (a *Actor) Idle(maxIdle time.Duration) bool {
	if a.sessionCount.Load() > 0 {
		return false
	}
	last := time.UnixMilli(a.lastActivity.Load())
	return time.Since(last) > maxIdle
}

func (a *Actor) post(ev event) error {
	select {
	case a.events <- ev:
		return nil
	case <-a.ctx.Done():
		return ErrStopped
	}
}

func (a *Actor) touch() {
	a.lastActivity.Store(time.Now().UnixMilli())
}

func (a *Actor) run() {
	defer close(a.done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			a.shutdown()
			return
		case ev := <-a.events:
			a.handle(ev)
		case <-ticker.C:
			a.handleTick()
		}
	}
}

func (a *Actor) handle(ev event) {
	switch ev := ev.(type) {
	case connectEvent:
		a.handleConnect(ev.sess)
	case disconnectEvent:
		a.handleDisconnect(ev.sessionID)
	case editEvent:
		a.handleEdit(ev.sessionID, ev.content)
	case saveRequestEvent:
		a.handleSaveRequest(ev.done)
	}
}

func (a *Actor) handleConnect(sess *Session) {
	if !a.hydrated {
		start := time.Now()
		content, found := a.gateway.Load(a.ctx, a.id)
		a.content = content
		a.hydrated = true
		observability.ObserveHydration(time.Since(start))
		a.logger.Info().
			Bool("found", found).
			Int("bytes", len(content)).
			Msg("Document hydrated")
	}

	a.registry.Register(sess)
	a.syncSessionCount()
	a.touch()
	observability.SessionOpened()

	a.logger.Info().
		Str("sessionId", sess.ID).
		Str("remoteAddr", sess.RemoteAddr).
		Int("connections", a.registry.Len()).
		Msg("Session connected")

	if err := sess.Send(ContentUpdate{Type: TypeContentUpdate, Content: a.content}); err != nil {
		a.fanout.Evict(sess, err)
		a.syncSessionCount()
		return
	}
	if err := sess.Send(StatusMessage{Type: TypeStatus, Message: "Connected", Connections: a.registry.Len()}); err != nil {
		a.fanout.Evict(sess, err)
		a.syncSessionCount()
		return
	}

	a.fanout.Broadcast(ConnectionsMessage{Type: TypeConnections, Count: a.registry.Len()}, sess.ID)
	a.syncSessionCount()
}

func (a *Actor) handleDisconnect(sessionID string) {
	if a.registry.Unregister(sessionID) {
		observability.SessionClosed()
		a.logger.Info().
			Str("sessionId", sessionID).
			Int("connections", a.registry.Len()).
			Msg("Session disconnected")
	}
	a.syncSessionCount()
	a.touch()

	a.fanout.Broadcast(ConnectionsMessage{Type: TypeConnections, Count: a.registry.Len()}, "")
	a.syncSessionCount()

	if a.registry.Len() == 0 && strings.TrimSpace(a.content) != "" {
		if ok := a.saveAndWait(); ok {
			a.lastSaved = time.Now()
		}
	}
}

func (a *Actor) handleEdit(sessionID, content string) {
	// Last write wins: no version check against concurrent edits.
	a.content = content
	a.touch()
	observability.EditAccepted()

	a.fanout.Broadcast(ContentUpdate{Type: TypeContentUpdate, Content: content}, sessionID)
	a.syncSessionCount()

	a.scheduleSave()
}

func (a *Actor) handleSaveRequest(done chan bool) {
	ok := a.saveAndWait()
	if ok {
		a.lastSaved = time.Now()
	}
	done <- ok
}

func (a *Actor) handleTick() {
	// Periodic durability: independent of the debounce window. The ticker
	// keeps firing regardless of save outcomes, so transient storage
	// errors heal on the next tick.
	if strings.TrimSpace(a.content) == "" || a.registry.Len() == 0 {
		return
	}
	a.enqueueSave()
}

// scheduleSave launches a fire-and-forget save unless one already ran
// within the debounce window. The event loop never waits on it. The clock
// advances at hand-off rather than on completion; a write that later fails
// is healed by the periodic tick, not by the next keystroke.
func (a *Actor) scheduleSave() {
	if time.Since(a.lastSaved) < a.interval {
		observability.ObserveSave(observability.SaveOutcomeSkippedDebounce, 0)
		return
	}
	a.enqueueSave()
	a.lastSaved = time.Now()
}

// enqueueSave hands the current content to the persister without blocking.
// A still-pending request is replaced so the newest content wins.
func (a *Actor) enqueueSave() {
	req := saveRequest{content: a.content}
	for {
		select {
		case a.saves <- req:
			return
		default:
		}
		select {
		case <-a.saves:
		default:
		}
	}
}

// saveAndWait runs an immediate save through the persister and blocks the
// event loop until it completes. Used by the explicit save paths only.
func (a *Actor) saveAndWait() bool {
	done := make(chan bool, 1)
	select {
	case a.saves <- saveRequest{content: a.content, done: done}:
	case <-a.ctx.Done():
		return false
	}
	select {
	case ok := <-done:
		return ok
	case <-a.ctx.Done():
		return false
	}
}

// persister serializes all durable writes for this document, one at a
// time, in arrival order. It exits once the run loop closes the queue, so
// Stop joining it guarantees the final write has committed.
func (a *Actor) persister() {
	defer close(a.persisterDone)

	for req := range a.saves {
		ok := a.gateway.Save(context.Background(), a.id, req.content)
		if req.done != nil {
			req.done <- ok
		}
	}
}

// shutdown runs on the event loop after cancellation. Only the event loop
// sends on the saves channel, so closing it here cannot race a send.
func (a *Actor) shutdown() {
	for _, sess := range a.registry.All() {
		sess.Close()
		a.registry.Unregister(sess.ID)
		observability.SessionClosed()
	}
	a.syncSessionCount()

	if strings.TrimSpace(a.content) != "" {
		a.enqueueSave()
	}
	close(a.saves)

	a.logger.Info().Msg("Document actor stopped")
}

func (a *Actor) syncSessionCount() {
	a.sessionCount.Store(int32(a.registry.Len()))
}
