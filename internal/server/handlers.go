package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/quill/internal/assistant"
	"github.com/hyperjump/quill/internal/chunking"
	"github.com/hyperjump/quill/internal/docsearch"
	"github.com/hyperjump/quill/internal/host"
	"github.com/hyperjump/quill/internal/journal"
	"github.com/hyperjump/quill/internal/models"
	"go.uber.org/zap"
)

type contextRequest struct {
	Document       string          `json:"document" validate:"required"`
	Query          string          `json:"query" validate:"required"`
	Selection      string          `json:"selection"`
	CurrentChapter string          `json:"current_chapter"`
	Mode           models.ChatMode `json:"mode" validate:"omitempty,oneof=agent ask custom"`
	ContextWindow  int             `json:"context_window" validate:"omitempty,min=1000"`
}

func (r contextRequest) turn(defaultMode models.ChatMode) assistant.TurnRequest {
	mode := r.Mode
	if mode == "" {
		mode = defaultMode
	}
	return assistant.TurnRequest{
		Document:       r.Document,
		Query:          r.Query,
		Selection:      r.Selection,
		CurrentChapter: r.CurrentChapter,
		Mode:           mode,
		ContextWindow:  r.ContextWindow,
	}
}

type actionsRequest struct {
	Document  string          `json:"document" validate:"required"`
	TurnID    string          `json:"turn_id" validate:"omitempty,uuid"`
	Query     string          `json:"query"`
	Selection string          `json:"selection"`
	Mode      models.ChatMode `json:"mode" validate:"omitempty,oneof=agent ask custom"`
	Reply     string          `json:"reply" validate:"required"`
}

type parseRequest struct {
	Reply string `json:"reply" validate:"required"`
}

type searchRequest struct {
	Document string `json:"document" validate:"required"`
	Query    string `json:"query" validate:"required"`
	Limit    int    `json:"limit" validate:"min=0"`
	Fuzzy    bool   `json:"fuzzy"`
}

// commandView tags a parsed command with its directive type.
type commandView struct {
	Type    models.ActionType    `json:"type"`
	Command models.ActionCommand `json:"command"`
}

func commandViews(cmds []models.ActionCommand) []commandView {
	out := make([]commandView, len(cmds))
	for i, c := range cmds {
		out[i] = commandView{Type: c.Type(), Command: c}
	}
	return out
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.logger.Debug("context request", zap.String("document", req.Document), zap.String("mode", string(req.Mode)))
	doc, err := s.registry.Open(r.Context(), req.Document)
	if err != nil {
		s.fail(w, "open document", err)
		return
	}
	turn, err := s.processor.Prepare(r.Context(), doc, req.turn(s.config.Assistant.DefaultMode))
	if err != nil {
		s.fail(w, "prepare turn", err)
		return
	}
	s.respondJSON(w, http.StatusOK, turn)
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	var req actionsRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.logger.Debug("actions request", zap.String("document", req.Document), zap.String("turn_id", req.TurnID))
	doc, err := s.registry.Open(r.Context(), req.Document)
	if err != nil {
		s.fail(w, "open document", err)
		return
	}
	turn := contextRequest{Document: req.Document, Query: req.Query, Selection: req.Selection, Mode: req.Mode}
	out, err := s.processor.Apply(r.Context(), doc, assistant.ApplyRequest{
		TurnRequest: turn.turn(s.config.Assistant.DefaultMode),
		TurnID:      req.TurnID,
		Reply:       req.Reply,
	})
	if err != nil {
		s.fail(w, "apply reply", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"turn_id":    out.TurnID,
		"dispatched": out.Dispatched,
		"commands":   commandViews(out.Commands),
		"report":     out.Report,
		"skipped":    out.Skipped,
		"summary":    out.Summary,
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !s.decode(w, r, &req) {
		return
	}
	res := s.parser.ParseReport(req.Reply)
	skipped := res.Skipped
	if skipped == nil {
		skipped = []models.SkippedDirective{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"commands": commandViews(res.Commands),
		"skipped":  skipped,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.logger.Debug("search request", zap.String("document", req.Document), zap.String("query", req.Query), zap.Int("limit", req.Limit))
	doc, err := s.registry.Open(r.Context(), req.Document)
	if err != nil {
		s.fail(w, "open document", err)
		return
	}
	paragraphs, err := doc.ReadParagraphs(r.Context())
	if err != nil {
		s.fail(w, "read paragraphs", err)
		return
	}
	idx, err := docsearch.Build(r.Context(), paragraphs)
	if err != nil {
		s.fail(w, "build index", err)
		return
	}
	defer func() { _ = idx.Close() }()

	limit := req.Limit
	if limit <= 0 {
		limit = s.config.Search.DefaultLimit
	}
	if limit > s.config.Search.MaxLimit {
		limit = s.config.Search.MaxLimit
	}
	hits, err := idx.Search(r.Context(), req.Query, limit, &docsearch.SearchOptions{
		SectionBoost: s.config.Search.SectionBoost,
		Fuzzy:        req.Fuzzy,
	})
	if err != nil {
		s.fail(w, "search", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"query": req.Query, "hits": hits})
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("document")
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "document is required")
		return
	}
	doc, err := s.registry.Open(r.Context(), path)
	if err != nil {
		s.fail(w, "open document", err)
		return
	}
	paragraphs, err := doc.ReadParagraphs(r.Context())
	if err != nil {
		s.fail(w, "read paragraphs", err)
		return
	}
	outline := chunking.Outline(paragraphs)
	if outline == nil {
		outline = []chunking.OutlineEntry{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"document": doc.Path(),
		"outline":  outline,
		"stats":    chunking.ComputeStats(paragraphs),
		"summary":  chunking.DocumentSummary(paragraphs),
	})
}

func (s *Server) handleListTurns(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		s.respondError(w, http.StatusNotImplemented, "journal not enabled")
		return
	}
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = s.config.Search.DefaultLimit
	}
	turns, err := s.journal.ListTurns(r.Context(), q.Get("document"), offset, limit)
	if err != nil {
		s.fail(w, "list turns", err)
		return
	}
	total, err := s.journal.CountTurns(r.Context())
	if err != nil {
		s.fail(w, "count turns", err)
		return
	}
	if turns == nil {
		turns = []*journal.Turn{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"turns": turns, "total": total})
}

func (s *Server) handleGetTurn(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		s.respondError(w, http.StatusNotImplemented, "journal not enabled")
		return
	}
	turn, err := s.journal.GetTurn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "get turn", err)
		return
	}
	s.respondJSON(w, http.StatusOK, turn)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"open_documents": s.registry.Len(),
		"journal":        s.journal != nil,
	})
}

// decode reads and validates a JSON body, responding 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// fail maps err to a status code and responds.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", zap.Error(err))
	} else {
		s.logger.Debug(op+" rejected", zap.Int("status", status), zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, host.ErrOutsideRoot):
		return http.StatusForbidden
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, journal.ErrTurnNotFound):
		return http.StatusNotFound
	case errors.Is(err, host.ErrUnsupportedFormat),
		errors.Is(err, assistant.ErrEmptyQuery),
		errors.Is(err, assistant.ErrUnknownMode),
		errors.Is(err, docsearch.ErrEmptyQuery):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
