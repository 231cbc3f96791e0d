package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ahvonen/notesmith/internal/engine"
	"github.com/ahvonen/notesmith/internal/llm"
)

type searchResponse struct {
	Success bool                  `json:"success"`
	Query   string                `json:"query"`
	Results []engine.SearchResult `json:"results"`
	Total   int                   `json:"total"`
}

type documentsResponse struct {
	Success   bool                  `json:"success"`
	Documents []engine.DocumentInfo `json:"documents"`
	Total     int                   `json:"total"`
}

type syncRequest struct {
	Force bool `json:"force"`
}

type syncResponse struct {
	Success          bool                 `json:"success"`
	RunID            string               `json:"run_id"`
	DocumentsIndexed int                  `json:"documents_indexed"`
	DocumentsUpdated int                  `json:"documents_updated"`
	DocumentsDeleted int                  `json:"documents_deleted"`
	ChunksIndexed    int                  `json:"chunks_indexed"`
	ElapsedSeconds   float64              `json:"elapsed_seconds"`
	Failures         []engine.SyncFailure `json:"failures,omitempty"`
}

type chatRequestBody struct {
	Messages []llm.Message `json:"messages"`
	Message  string        `json:"message,omitempty"`
	TopK     int           `json:"top_k,omitempty"`
}

type summaryRequest struct {
	Topic string `json:"topic"`
	TopK  int    `json:"top_k,omitempty"`
}

type answerResponse struct {
	Success bool   `json:"success"`
	Answer  string `json:"answer"`
	Sources []engine.Source `json:"sources"`
	Model   string `json:"model,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req engine.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.TopK == 0 {
		req.TopK = 10
	}

	results, err := s.engine.Search(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Success: true,
		Query:   req.Query,
		Results: results,
		Total:   len(results),
	})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	docs, err := s.engine.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentsResponse{Success: true, Documents: docs, Total: len(docs)})
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	path := "/" + chi.URLParam(r, "*")

	topK := 10
	if v := r.URL.Query().Get("top_k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			topK = n
		}
	}

	results, err := s.engine.Similar(r.Context(), path, topK)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Success: true, Results: results, Total: len(results)})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.engine.Documents(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentsResponse{Success: true, Documents: docs, Total: len(docs)})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	res, err := s.engine.Sync(r.Context(), req.Force)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{
		Success:          true,
		RunID:            res.RunID,
		DocumentsIndexed: res.Added,
		DocumentsUpdated: res.Updated,
		DocumentsDeleted: res.Deleted,
		ChunksIndexed:    res.Chunks,
		ElapsedSeconds:   res.Elapsed.Seconds(),
		Failures:         res.Failures,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Stats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	messages := req.Messages
	if len(messages) == 0 && req.Message != "" {
		messages = []llm.Message{{Role: llm.RoleUser, Content: req.Message}}
	}
	if len(messages) == 0 {
		http.Error(w, "messages is required", http.StatusBadRequest)
		return
	}

	answer, err := s.engine.Chat(r.Context(), messages, req.TopK)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{
		Success: true,
		Answer:  answer.Content,
		Sources: answer.Sources,
		Model:   answer.Model,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Topic == "" {
		http.Error(w, "topic is required", http.StatusBadRequest)
		return
	}

	answer, err := s.engine.Summarize(r.Context(), req.Topic, req.TopK)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{
		Success: true,
		Answer:  answer.Content,
		Sources: answer.Sources,
		Model:   answer.Model,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health, err := s.engine.Health(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, health)
}

// writeError maps engine errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var queryErr *engine.QueryError
	switch {
	case errors.As(err, &queryErr):
		http.Error(w, queryErr.Error(), http.StatusBadRequest)
	case errors.Is(err, engine.ErrSyncInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, engine.ErrNoProvider):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		s.log.Error().Err(err).Msg("request failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
