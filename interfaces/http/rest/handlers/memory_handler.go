package handlers

import (
	"encoding/json"
	"math"
	"net/http"

	"recall-backend/application/ports"
	"recall-backend/application/services"
	"recall-backend/domain/core/entities"
	apperrors "recall-backend/pkg/errors"
	"recall-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MemoryHandler handles memory-related HTTP requests
type MemoryHandler struct {
	service *services.MemoryService
	logger  *zap.Logger
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(service *services.MemoryService, logger *zap.Logger) *MemoryHandler {
	return &MemoryHandler{
		service: service,
		logger:  logger,
	}
}

// CreateMemoriesRequest represents the request body for storing memories
type CreateMemoriesRequest struct {
	Messages   []entities.Message `json:"messages" validate:"required,min=1,dive"`
	UserID     string             `json:"user_id,omitempty"`
	AgentID    string             `json:"agent_id,omitempty"`
	RunID      string             `json:"run_id,omitempty"`
	Metadata   map[string]any     `json:"metadata,omitempty"`
	MemoryType string             `json:"memory_type,omitempty"`
	Prompt     string             `json:"prompt,omitempty"`
}

// SearchMemoriesRequest represents the request body for a similarity search
type SearchMemoriesRequest struct {
	Query     string         `json:"query" validate:"required"`
	UserID    string         `json:"user_id,omitempty"`
	AgentID   string         `json:"agent_id,omitempty"`
	RunID     string         `json:"run_id,omitempty"`
	Filters   map[string]any `json:"filters,omitempty"`
	Threshold *float64       `json:"threshold,omitempty"`
	Limit     int            `json:"limit,omitempty" validate:"omitempty,gt=0"`
}

// UpdateMemoryRequest represents the request body for updating a memory
type UpdateMemoryRequest struct {
	Text string `json:"text" validate:"required"`
}

// CreateMemories handles POST /memories/
func (h *MemoryHandler) CreateMemories(w http.ResponseWriter, r *http.Request) {
	var req CreateMemoriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	filters := ports.Filters{UserID: req.UserID, AgentID: req.AgentID, RunID: req.RunID}
	if !filters.Any() {
		h.respondError(w, http.StatusBadRequest, "At least one identifier (user_id, agent_id, run_id) is required.")
		return
	}

	result, err := h.service.Add(r.Context(), services.AddRequest{
		Messages:   req.Messages,
		Filters:    filters,
		Metadata:   req.Metadata,
		MemoryType: req.MemoryType,
		Prompt:     req.Prompt,
	})
	if err != nil {
		h.logger.Error("Failed to create memories", zap.Error(err))
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// GetAllMemories handles GET /memories/
func (h *MemoryHandler) GetAllMemories(w http.ResponseWriter, r *http.Request) {
	filters := filtersFromQuery(r)
	if !filters.Any() {
		h.respondError(w, http.StatusBadRequest, "At least one identifier is required.")
		return
	}

	memories, err := h.service.GetAll(r.Context(), filters)
	if err != nil {
		h.logger.Error("Failed to list memories", zap.Error(err))
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"results": cleanScores(memories)})
}

// GetMemory handles GET /memories/{memoryID}
func (h *MemoryHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryID")
	if memoryID == "" {
		h.respondError(w, http.StatusBadRequest, "Memory ID is required")
		return
	}

	memory, err := h.service.Get(r.Context(), memoryID)
	if err != nil {
		h.logger.Error("Failed to get memory", zap.String("memoryID", memoryID), zap.Error(err))
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, memory)
}

// UpdateMemory handles PUT /memories/{memoryID}
func (h *MemoryHandler) UpdateMemory(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryID")
	if memoryID == "" {
		h.respondError(w, http.StatusBadRequest, "Memory ID is required")
		return
	}

	var req UpdateMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	memory, err := h.service.Update(r.Context(), memoryID, req.Text)
	if err != nil {
		h.logger.Error("Failed to update memory", zap.String("memoryID", memoryID), zap.Error(err))
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, memory)
}

// DeleteMemory handles DELETE /memories/{memoryID}
func (h *MemoryHandler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryID")
	if memoryID == "" {
		h.respondError(w, http.StatusBadRequest, "Memory ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), memoryID); err != nil {
		h.logger.Error("Failed to delete memory", zap.String("memoryID", memoryID), zap.Error(err))
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"message": "Memory deleted successfully!"})
}

// DeleteAllMemories handles DELETE /memories/
func (h *MemoryHandler) DeleteAllMemories(w http.ResponseWriter, r *http.Request) {
	filters := filtersFromQuery(r)
	if !filters.Any() {
		h.respondError(w, http.StatusBadRequest, "At least one identifier is required.")
		return
	}

	if err := h.service.DeleteAll(r.Context(), filters); err != nil {
		h.logger.Error("Failed to delete memories", zap.Error(err))
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"message": "All memories deleted"})
}

// MemoryHistory handles GET /memories/{memoryID}/history/
func (h *MemoryHandler) MemoryHistory(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryID")
	if memoryID == "" {
		h.respondError(w, http.StatusBadRequest, "Memory ID is required")
		return
	}

	history, err := h.service.History(r.Context(), memoryID)
	if err != nil {
		h.logger.Error("Failed to get memory history", zap.String("memoryID", memoryID), zap.Error(err))
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, history)
}

// SearchMemories handles POST /search
func (h *MemoryHandler) SearchMemories(w http.ResponseWriter, r *http.Request) {
	var req SearchMemoriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	filters := ports.Filters{UserID: req.UserID, AgentID: req.AgentID, RunID: req.RunID}
	mergeFilterMap(&filters, req.Filters)

	result, err := h.service.Search(r.Context(), services.SearchRequest{
		Query:     req.Query,
		Filters:   filters,
		Threshold: req.Threshold,
		Limit:     req.Limit,
	})
	if err != nil {
		h.logger.Error("Failed to search memories", zap.Error(err))
		h.respondServiceError(w, err)
		return
	}

	result.Results = cleanScores(result.Results)
	h.respondJSON(w, http.StatusOK, result)
}

// ResetMemories handles POST /reset/
func (h *MemoryHandler) ResetMemories(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context()); err != nil {
		h.logger.Error("Failed to reset memories", zap.Error(err))
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"message": "All memories reset"})
}

// cleanScores drops non-finite similarity scores that encoding/json
// refuses to marshal.
func cleanScores(memories []*entities.Memory) []*entities.Memory {
	for _, m := range memories {
		if m == nil || m.Score == nil {
			continue
		}
		if f := *m.Score; math.IsNaN(f) || math.IsInf(f, 0) {
			m.Score = nil
		}
	}
	return memories
}

// mergeFilterMap folds identifier entries of a free-form filter mapping
// into the typed filter set; explicit top-level identifiers win.
func mergeFilterMap(f *ports.Filters, m map[string]any) {
	if m == nil {
		return
	}
	if f.UserID == "" {
		f.UserID, _ = m["user_id"].(string)
	}
	if f.AgentID == "" {
		f.AgentID, _ = m["agent_id"].(string)
	}
	if f.RunID == "" {
		f.RunID, _ = m["run_id"].(string)
	}
}

func filtersFromQuery(r *http.Request) ports.Filters {
	q := r.URL.Query()
	return ports.Filters{
		UserID:  q.Get("user_id"),
		AgentID: q.Get("agent_id"),
		RunID:   q.Get("run_id"),
	}
}

// respondServiceError maps application errors onto HTTP status codes.
func (h *MemoryHandler) respondServiceError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	message := "Internal server error"
	if appErr := apperrors.GetAppError(err); appErr != nil && status < http.StatusInternalServerError {
		message = appErr.Message
	}
	h.respondError(w, status, message)
}

// respondJSON writes a JSON response, replacing non-finite floats that
// similarity scores can contain with nulls so encoding never fails.
func (h *MemoryHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(utils.CleanNonFinite(data)); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// respondError writes an error response
func (h *MemoryHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
	})
}
