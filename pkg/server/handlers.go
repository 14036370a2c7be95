package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/faizahmd2/realtime-editor/pkg/document"
)

//go:embed editor.html
var editorHTML []byte

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/editor", http.StatusFound)
}

func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("id") == "" {
		id, err := NewDocumentID()
		if err != nil {
			http.Error(w, "Failed to generate editor ID", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/editor?id="+id, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write(editorHTML)
}

func (s *Server) handleMissingID(w http.ResponseWriter, _ *http.Request) {
	// Rejected before any actor state is touched.
	http.Error(w, "Editor ID required", http.StatusBadRequest)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		s.handleMissingID(w, r)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	sess := document.NewSession(conn, r.RemoteAddr)

	// A janitor sweep can reclaim the actor between lookup and connect;
	// one retry always lands on a fresh instance.
	actor := s.manager.GetOrCreate(id)
	if err := actor.Connect(sess); err != nil {
		actor = s.manager.GetOrCreate(id)
		if err := actor.Connect(sess); err != nil {
			s.logger.Error().Err(err).Str("documentId", id).Msg("Failed to attach session")
			conn.Close()
			return
		}
	}

	s.readPump(actor, sess, conn)
}

// readPump consumes inbound frames for one session until the transport
// closes. It runs on the connection handler goroutine; all outbound writes
// stay with the actor.
func (s *Server) readPump(actor *document.Actor, sess *document.Session, conn *websocket.Conn) {
	defer func() {
		conn.Close()
		actor.Disconnect(sess.ID)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug().Err(err).Str("sessionId", sess.ID).Msg("Websocket read error")
			}
			return
		}

		msg, err := document.ParseClientMessage(data)
		if err != nil {
			// Malformed frames are dropped; the connection stays open.
			s.logger.Warn().Err(err).Str("sessionId", sess.ID).Msg("Dropping malformed frame")
			continue
		}

		switch msg.Type {
		case document.TypeContentChange:
			if err := actor.ApplyEdit(sess.ID, msg.Content); err != nil {
				return
			}
		default:
			s.logger.Debug().Str("type", msg.Type).Str("sessionId", sess.ID).Msg("Ignoring unknown frame type")
		}
	}
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	content, _ := s.gateway.Load(r.Context(), id)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"content": content,
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if actor, ok := s.manager.Get(id); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		if _, err := actor.RequestSave(ctx); err != nil && !errors.Is(err, document.ErrStopped) {
			s.logger.Warn().Err(err).Str("documentId", id).Msg("Explicit save did not complete")
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.gateway.Delete(r.Context(), id)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}
