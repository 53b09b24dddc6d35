package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/stattrust/matchup-compiler/internal/compiler"
	"github.com/stattrust/matchup-compiler/internal/pkg/models"
	"github.com/stattrust/matchup-compiler/internal/pkg/performance"
	"github.com/stattrust/matchup-compiler/internal/pkg/storage"
)

// secretHeader is the shared-secret header the upstream router sends when the
// service is deployed behind it.
const secretHeader = "x-stattrust-secret"

// compileRequest is the envelope body form of POST /compile. The raw-body
// form (vendor document as the body, matchup in query params) is used by
// callers that pipe captures straight through.
type compileRequest struct {
	Document   any    `json:"document"`
	Home       string `json:"home"`
	Away       string `json:"away"`
	SeasonYear int    `json:"season"`
}

type compileResponse struct {
	ID          string                   `json:"id"`
	Compiled    *models.CompiledDocument `json:"compiled"`
	Diagnostics models.Diagnostics       `json:"diagnostics"`
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "pong")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"storage": s.store != nil,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, performance.GetTracker().GetMetrics())
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if s.cfg.SharedSecret != "" && r.Header.Get(secretHeader) != s.cfg.SharedSecret {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	root, tc, err := s.decodeCompileRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	started := time.Now()
	compiled, diags, err := compiler.Convert(root, tc)
	if err != nil {
		// Fatal engine errors are caller errors: bad root or bad context.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	duration := time.Since(started)

	matchup := tc.AwayAbbr + " @ " + tc.HomeAbbr
	performance.GetTracker().RecordConversion(compiled.Meta.ConversionID, matchup, len(diags), duration)
	s.notifier.ConversionDegraded(matchup, diags)

	if s.store != nil {
		if err := s.persist(r, compiled, tc, diags); err != nil {
			// Persistence is best-effort; the caller still gets the document.
			slog.Error("Failed to persist compiled document", "id", compiled.Meta.ConversionID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, compileResponse{
		ID:          compiled.Meta.ConversionID,
		Compiled:    compiled,
		Diagnostics: diags,
	})
}

// decodeCompileRequest accepts both request forms. Query params home/away
// mark the raw-body form; otherwise the body is the JSON envelope.
func (s *Server) decodeCompileRequest(r *http.Request) (any, models.TeamContext, error) {
	q := r.URL.Query()
	season := s.defaults.DefaultSeasonYear
	if v := q.Get("season"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, models.TeamContext{}, fmt.Errorf("invalid season %q", v)
		}
		season = n
	}

	if home, away := q.Get("home"), q.Get("away"); home != "" || away != "" {
		var root any
		if err := json.NewDecoder(r.Body).Decode(&root); err != nil {
			return nil, models.TeamContext{}, fmt.Errorf("invalid JSON body: %v", err)
		}
		return root, models.TeamContext{HomeAbbr: home, AwayAbbr: away, SeasonYear: season}, nil
	}

	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, models.TeamContext{}, fmt.Errorf("invalid JSON body: %v", err)
	}
	if req.SeasonYear != 0 {
		season = req.SeasonYear
	}
	return req.Document, models.TeamContext{HomeAbbr: req.Home, AwayAbbr: req.Away, SeasonYear: season}, nil
}

func (s *Server) persist(r *http.Request, compiled *models.CompiledDocument, tc models.TeamContext, diags models.Diagnostics) error {
	raw, err := json.Marshal(compiled)
	if err != nil {
		return err
	}
	return s.store.SaveDocument(r.Context(), storage.StoredDocument{
		ID:         compiled.Meta.ConversionID,
		Home:       tc.HomeAbbr,
		Away:       tc.AwayAbbr,
		SeasonYear: tc.SeasonYear,
		Document:   raw,
		Warnings:   len(diags),
		CreatedAt:  time.Now().UTC(),
	})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage not configured")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	docs, err := s.store.ListDocuments(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list compiled documents", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []storage.StoredDocument{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage not configured")
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id query parameter required")
		return
	}
	doc, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		slog.Error("Failed to load compiled document", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
