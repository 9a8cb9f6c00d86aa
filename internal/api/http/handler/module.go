package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dtroode/modulehub/internal/logger"
	"github.com/dtroode/modulehub/internal/model"
)

// ModuleService defines module CRUD and content operations.
type ModuleService interface {
	Create(ctx context.Context, module model.Module) (model.Module, error)
	Find(ctx context.Context, filter model.Filter) ([]model.Module, error)
	Count(ctx context.Context, where model.Where) (int64, error)
	Get(ctx context.Context, id int64) (model.Module, error)
	Update(ctx context.Context, id int64, patch model.Patch) error
	UpdateAll(ctx context.Context, patch model.Patch, where model.Where) (int64, error)
	Replace(ctx context.Context, id int64, module model.Module) error
	Delete(ctx context.Context, id int64) error
	PutContent(ctx context.Context, id int64, contentType string, r io.Reader) (model.Module, error)
	GetContent(ctx context.Context, id int64) (model.Module, io.ReadCloser, error)
}

// Module handles HTTP endpoints for modules.
type Module struct {
	moduleService   ModuleService
	maxBodyBytes    int64
	maxContentBytes int64
	logger          *logger.Logger
}

// NewModule creates a new Module handler.
func NewModule(moduleService ModuleService, maxBodyBytes, maxContentBytes int64, logger *logger.Logger) *Module {
	return &Module{
		moduleService:   moduleService,
		maxBodyBytes:    maxBodyBytes,
		maxContentBytes: maxContentBytes,
		logger:          logger,
	}
}

// Create handles POST /modules.
func (h *Module) Create(w http.ResponseWriter, r *http.Request) {
	var module model.Module
	if err := decodeJSON(w, r, h.maxBodyBytes, &module); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if module.Name == "" {
		handleError(w, h.logger, model.NewInputError("name is required"))
		return
	}

	saved, err := h.moduleService.Create(r.Context(), module)
	if err != nil {
		h.fail("create", err)
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// Count handles GET /modules/count.
func (h *Module) Count(w http.ResponseWriter, r *http.Request) {
	where, err := parseWhere(r.URL.Query())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	n, err := h.moduleService.Count(r.Context(), where)
	if err != nil {
		h.fail("count", err)
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

// Find handles GET /modules.
func (h *Module) Find(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	modules, err := h.moduleService.Find(r.Context(), filter)
	if err != nil {
		h.fail("find", err)
		handleError(w, h.logger, err)
		return
	}
	if modules == nil {
		modules = []model.Module{}
	}

	writeJSON(w, http.StatusOK, modules)
}

// UpdateAll handles PATCH /modules.
func (h *Module) UpdateAll(w http.ResponseWriter, r *http.Request) {
	where, err := parseWhere(r.URL.Query())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	patch, err := h.decodePatch(w, r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	n, err := h.moduleService.UpdateAll(r.Context(), patch, where)
	if err != nil {
		h.fail("update all", err)
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

// Get handles GET /modules/{id}.
func (h *Module) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.moduleID(w, r)
	if !ok {
		return
	}

	module, err := h.moduleService.Get(r.Context(), id)
	if err != nil {
		h.fail("get", err, "module_id", id)
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, module)
}

// Update handles PATCH /modules/{id}.
func (h *Module) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.moduleID(w, r)
	if !ok {
		return
	}

	patch, err := h.decodePatch(w, r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.moduleService.Update(r.Context(), id, patch); err != nil {
		h.fail("update", err, "module_id", id)
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Replace handles PUT /modules/{id}.
func (h *Module) Replace(w http.ResponseWriter, r *http.Request) {
	id, ok := h.moduleID(w, r)
	if !ok {
		return
	}

	var module model.Module
	if err := decodeJSON(w, r, h.maxBodyBytes, &module); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if module.Name == "" {
		handleError(w, h.logger, model.NewInputError("name is required"))
		return
	}

	if err := h.moduleService.Replace(r.Context(), id, module); err != nil {
		h.fail("replace", err, "module_id", id)
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /modules/{id}.
func (h *Module) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.moduleID(w, r)
	if !ok {
		return
	}

	if err := h.moduleService.Delete(r.Context(), id); err != nil {
		h.fail("delete", err, "module_id", id)
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PutContent handles PUT /modules/{id}/content. The raw request body is stored.
func (h *Module) PutContent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.moduleID(w, r)
	if !ok {
		return
	}
	defer func() { _ = r.Body.Close() }()

	body := http.MaxBytesReader(w, r.Body, h.maxContentBytes)
	module, err := h.moduleService.PutContent(r.Context(), id, r.Header.Get("Content-Type"), body)
	if err != nil {
		h.fail("put content", err, "module_id", id)
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, module)
}

// GetContent handles GET /modules/{id}/content.
func (h *Module) GetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.moduleID(w, r)
	if !ok {
		return
	}

	module, rc, err := h.moduleService.GetContent(r.Context(), id)
	if err != nil {
		h.fail("get content", err, "module_id", id)
		handleError(w, h.logger, err)
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", module.ContentType)
	if module.ContentSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(module.ContentSize, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("Module handler: failed to stream content",
			"module_id", id,
			"error", err.Error())
	}
}

func (h *Module) decodePatch(w http.ResponseWriter, r *http.Request) (model.Patch, error) {
	var raw map[string]any
	if err := decodeJSON(w, r, h.maxBodyBytes, &raw); err != nil {
		return nil, err
	}

	fields, err := normalizeFields(raw)
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		if v == nil {
			return nil, model.NewInputError(fmt.Sprintf("field %q cannot be null", k))
		}
	}
	if name, ok := fields["name"]; ok {
		if s, isString := name.(string); !isString || s == "" {
			return nil, model.NewInputError("name is required")
		}
	}
	return model.Patch(fields), nil
}

// fail logs server-side failures. Client errors are logged by handleError.
func (h *Module) fail(op string, err error, args ...any) {
	if status, _ := statusFor(err); status < http.StatusInternalServerError {
		return
	}
	args = append([]any{"op", op, "error", err.Error()}, args...)
	h.logger.Error("Module handler: request failed", args...)
}

func (h *Module) moduleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		handleError(w, h.logger, model.NewInputError("invalid module id"))
		return 0, false
	}
	return id, true
}
