// Package web exposes the engine's operations over HTTP for whatever
// study front end sits on top. Rendering is not this process's job;
// every response is JSON.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jtkearn/deckbox/internal/domain"
	"github.com/jtkearn/deckbox/internal/importer"
	"github.com/jtkearn/deckbox/internal/queue"
	"github.com/jtkearn/deckbox/internal/srs"
	"github.com/jtkearn/deckbox/internal/storage"
	enginesync "github.com/jtkearn/deckbox/internal/sync"
)

// RowLoader fetches and validates the configured import source.
type RowLoader func(r *http.Request) ([]domain.Row, error)

// Server holds the dependencies for the HTTP surface.
type Server struct {
	db      *storage.DB
	engine  *enginesync.Engine
	builder *queue.Builder
	ladder  srs.Ladder
	load    RowLoader
	router  *http.ServeMux
	now     func() time.Time
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB, engine *enginesync.Engine, builder *queue.Builder, ladder srs.Ladder, load RowLoader) *Server {
	s := &Server{
		db:      db,
		engine:  engine,
		builder: builder,
		ladder:  ladder,
		load:    load,
		router:  http.NewServeMux(),
		now:     time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /healthz", s.handleHealthz())
	s.router.HandleFunc("POST /sync", s.handleSync())
	s.router.HandleFunc("GET /queue", s.handleQueue())
	s.router.HandleFunc("POST /review", s.handleReview())
}

func (s *Server) handleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// handleSync loads the import source and applies it. Validation
// failures are the client's to fix (422); transport failures invite a
// retry (502).
func (s *Server) handleSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := s.load(r)
		if err != nil {
			writeImportError(w, err)
			return
		}

		res, err := s.engine.PerformSync(rows)
		if err != nil {
			writeImportError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{
			"added":    res.Added,
			"updated":  res.Updated,
			"archived": res.Archived,
		})
	}
}

type queueItem struct {
	VariantID string    `json:"variantId"`
	RowID     string    `json:"rowId"`
	Type      string    `json:"type"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	Box       int       `json:"box"`
	DueAt     time.Time `json:"dueAt"`
}

func (s *Server) handleQueue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := r.URL.Query().Get("profile")
		if profile == "" {
			http.Error(w, "missing profile parameter", http.StatusBadRequest)
			return
		}

		items, err := s.builder.Build(profile)
		if err != nil {
			slog.Error("queue build failed", "profile", profile, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		out := make([]queueItem, len(items))
		for i, item := range items {
			out[i] = queueItem{
				VariantID: item.ID(),
				RowID:     item.RowID,
				Type:      string(item.Type),
				Front:     item.Front,
				Back:      item.Back,
				Box:       item.Progress.Box,
				DueAt:     item.Progress.DueAt,
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type reviewRequest struct {
	Profile     string `json:"profile"`
	RowID       string `json:"rowId"`
	VariantType string `json:"variantType"`
	Outcome     string `json:"outcome"`
}

// handleReview grades one variant: load progress, run the scheduler
// transition, persist the result.
func (s *Server) handleReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		outcome := domain.Outcome(req.Outcome)
		if outcome != domain.OutcomeKnow && outcome != domain.OutcomeDontKnow {
			http.Error(w, "outcome must be know or dont_know", http.StatusBadRequest)
			return
		}
		vt := domain.VariantType(req.VariantType)
		if vt != domain.VariantQA && vt != domain.VariantCloze {
			http.Error(w, "variantType must be qa or cloze", http.StatusBadRequest)
			return
		}

		rec, err := s.db.FindProgress(req.Profile, req.RowID, vt)
		if err != nil {
			slog.Error("progress lookup failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if rec == nil {
			http.Error(w, "no progress for this variant", http.StatusNotFound)
			return
		}

		next := s.ladder.Update(*rec, outcome, s.now())
		if err := s.db.SaveProgress(next); err != nil {
			slog.Error("progress save failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"box":    next.Box,
			"dueAt":  next.DueAt,
			"lapses": next.Lapses,
		})
	}
}

func writeImportError(w http.ResponseWriter, err error) {
	var verr *importer.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":          "validation",
			"kind":           string(verr.Kind),
			"missingHeaders": verr.MissingHeaders,
			"rows":           verr.Rows,
		})
		return
	}
	var terr *importer.TransportError
	if errors.As(err, &terr) {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":  "transport",
			"source": terr.Source,
		})
		return
	}
	slog.Error("sync failed", "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
