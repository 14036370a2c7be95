// Package persist bridges in-memory documents to the durable store and the
// best-effort cache. Storage latency and failures are kept away from the
// editing path: every error here is logged and swallowed, and in-memory
// content stays authoritative.
package persist

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/faizahmd2/realtime-editor/internal/observability"
	"github.com/faizahmd2/realtime-editor/pkg/store"
)

// ContentCache is the subset of the cache the gateway uses. A no-op
// implementation is acceptable.
type ContentCache interface {
	Put(ctx context.Context, id, content string, ttl time.Duration) error
	Get(ctx context.Context, id string) (string, bool, error)
	Delete(ctx context.Context, id string) error
}

// Gateway performs encoded reads and writes against the durable store with
// cache write-through. It is shared by all document actors and the HTTP
// load/delete endpoints; it keeps no per-document state.
type Gateway struct {
	store    store.Store
	cache    ContentCache
	codec    *store.Codec
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// New creates a gateway. cache may be nil-backed; ttl only applies when a
// cache write happens.
func New(st store.Store, cache ContentCache, codec *store.Codec, cacheTTL time.Duration, logger zerolog.Logger) *Gateway {
	return &Gateway{
		store:    st,
		cache:    cache,
		codec:    codec,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Load returns the current content for a document id. The cache is tried
// first; misses and failures fall through to the durable store. found is
// false when the document has never been saved. Failures are logged and
// reported as absence so a connection can proceed with an empty document.
func (g *Gateway) Load(ctx context.Context, id string) (string, bool) {
	if g.cache != nil {
		content, hit, err := g.cache.Get(ctx, id)
		switch {
		case err != nil:
			observability.CacheLookup("error")
			g.logger.Warn().Err(err).Str("documentId", id).Msg("Cache read failed")
		case hit:
			observability.CacheLookup("hit")
			return content, true
		default:
			observability.CacheLookup("miss")
		}
	}

	payload, found, err := g.store.Load(ctx, id)
	if err != nil {
		g.logger.Error().Err(err).Str("documentId", id).Msg("Load from store failed")
		return "", false
	}
	if !found {
		return "", false
	}

	content, err := g.codec.Decode(payload)
	if err != nil {
		// Tolerate rows written before encoding was in place.
		g.logger.Warn().Err(err).Str("documentId", id).Msg("Payload decode failed, using raw value")
		return payload, true
	}
	return content, true
}

// Save writes content durably and refreshes the cache entry. Blank content
// is never persisted, even on the forced paths. Returns true only when the
// durable write succeeded.
func (g *Gateway) Save(ctx context.Context, id, content string) bool {
	if strings.TrimSpace(content) == "" {
		observability.ObserveSave(observability.SaveOutcomeSkippedBlank, 0)
		return false
	}

	payload, err := g.codec.Encode(content)
	if err != nil {
		observability.ObserveSave(observability.SaveOutcomeError, 0)
		g.logger.Error().Err(err).Str("documentId", id).Msg("Content encode failed")
		return false
	}

	start := time.Now()
	if err := g.store.Save(ctx, id, payload); err != nil {
		observability.ObserveSave(observability.SaveOutcomeError, time.Since(start))
		g.logger.Error().Err(err).Str("documentId", id).Msg("Save to store failed")
		return false
	}
	observability.ObserveSave(observability.SaveOutcomeSaved, time.Since(start))

	if g.cache != nil {
		if err := g.cache.Put(ctx, id, content, g.cacheTTL); err != nil {
			g.logger.Warn().Err(err).Str("documentId", id).Msg("Cache write failed")
		}
	}

	g.logger.Debug().Str("documentId", id).Int("bytes", len(content)).Msg("Document saved")
	return true
}

// Delete removes the document from the store and the cache. Failures are
// logged; delete is best-effort like the other paths.
func (g *Gateway) Delete(ctx context.Context, id string) {
	if err := g.store.Delete(ctx, id); err != nil {
		g.logger.Error().Err(err).Str("documentId", id).Msg("Delete from store failed")
	}
	if g.cache != nil {
		if err := g.cache.Delete(ctx, id); err != nil {
			g.logger.Warn().Err(err).Str("documentId", id).Msg("Cache delete failed")
		}
	}
}
