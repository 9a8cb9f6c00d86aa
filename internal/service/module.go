package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dtroode/modulehub/internal/logger"
	"github.com/dtroode/modulehub/internal/model"
)

// Module manages modules and their binary content.
type Module struct {
	store   model.ModuleStore
	storage model.Storage
	logger  *logger.Logger
}

// NewModule creates Module. storage may be nil, which disables content operations.
func NewModule(store model.ModuleStore, storage model.Storage, logger *logger.Logger) *Module {
	return &Module{
		store:   store,
		storage: storage,
		logger:  logger,
	}
}

func (s *Module) Create(ctx context.Context, module model.Module) (model.Module, error) {
	module.ID = 0
	module.ContentType = ""
	module.ContentSize = 0

	saved, err := s.store.Create(ctx, module)
	if err != nil {
		return model.Module{}, fmt.Errorf("failed to create module: %w", err)
	}

	s.logger.Info("Module service: module created",
		"module_id", saved.ID)

	return saved, nil
}

func (s *Module) Find(ctx context.Context, filter model.Filter) ([]model.Module, error) {
	modules, err := s.store.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find modules: %w", err)
	}
	return modules, nil
}

func (s *Module) Count(ctx context.Context, where model.Where) (int64, error) {
	n, err := s.store.Count(ctx, where)
	if err != nil {
		return 0, fmt.Errorf("failed to count modules: %w", err)
	}
	return n, nil
}

func (s *Module) Get(ctx context.Context, id int64) (model.Module, error) {
	module, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Module{}, fmt.Errorf("failed to get module: %w", err)
	}
	return module, nil
}

// serverManaged lists module fields only content uploads may set.
var serverManaged = []string{"contentType", "contentSize"}

func checkClientPatch(patch model.Patch) error {
	for _, field := range serverManaged {
		if _, ok := patch[field]; ok {
			return model.NewInputError(fmt.Sprintf("field %q is managed by the server", field))
		}
	}
	return nil
}

func (s *Module) Update(ctx context.Context, id int64, patch model.Patch) error {
	if err := checkClientPatch(patch); err != nil {
		return err
	}

	if err := s.store.UpdateByID(ctx, id, patch); err != nil {
		return fmt.Errorf("failed to update module: %w", err)
	}
	return nil
}

func (s *Module) UpdateAll(ctx context.Context, patch model.Patch, where model.Where) (int64, error) {
	if err := checkClientPatch(patch); err != nil {
		return 0, err
	}

	n, err := s.store.UpdateAll(ctx, patch, where)
	if err != nil {
		return 0, fmt.Errorf("failed to update modules: %w", err)
	}

	s.logger.Info("Module service: modules updated",
		"count", n)

	return n, nil
}

// Replace overwrites every client-owned field of a module. Content metadata is kept.
func (s *Module) Replace(ctx context.Context, id int64, module model.Module) error {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get module: %w", err)
	}

	module.ID = id
	module.ContentType = existing.ContentType
	module.ContentSize = existing.ContentSize

	if err := s.store.ReplaceByID(ctx, id, module); err != nil {
		return fmt.Errorf("failed to replace module: %w", err)
	}
	return nil
}

// Delete removes a module and, best effort, its stored content.
func (s *Module) Delete(ctx context.Context, id int64) error {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get module: %w", err)
	}

	if err := s.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}

	if existing.HasContent() && s.storage != nil {
		if err := s.storage.Delete(ctx, model.ContentKey(id)); err != nil {
			s.logger.Error("Module service: failed to delete module content",
				"module_id", id,
				"error", err.Error())
		}
	}

	s.logger.Info("Module service: module deleted",
		"module_id", id)

	return nil
}

// PutContent stores r as the content of a module and records its type and size.
func (s *Module) PutContent(ctx context.Context, id int64, contentType string, r io.Reader) (model.Module, error) {
	if s.storage == nil {
		return model.Module{}, model.ErrStorageUnavailable
	}

	if _, err := s.store.FindByID(ctx, id); err != nil {
		return model.Module{}, fmt.Errorf("failed to get module: %w", err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	counter := &countingReader{r: r}
	if err := s.storage.Upload(ctx, model.ContentKey(id), counter, -1, contentType); err != nil {
		s.logger.Error("Module service: failed to upload module content",
			"module_id", id,
			"error", err.Error())
		return model.Module{}, fmt.Errorf("failed to upload module content: %w", err)
	}

	err := s.store.UpdateByID(ctx, id, model.Patch{
		"contentType": contentType,
		"contentSize": counter.n,
	})
	if err != nil {
		return model.Module{}, fmt.Errorf("failed to record module content: %w", err)
	}

	s.logger.Info("Module service: module content stored",
		"module_id", id,
		"size", counter.n)

	return s.Get(ctx, id)
}

// GetContent opens the stored content of a module. The caller closes the reader.
func (s *Module) GetContent(ctx context.Context, id int64) (model.Module, io.ReadCloser, error) {
	if s.storage == nil {
		return model.Module{}, nil, model.ErrStorageUnavailable
	}

	module, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Module{}, nil, fmt.Errorf("failed to get module: %w", err)
	}
	if !module.HasContent() {
		return model.Module{}, nil, fmt.Errorf("module %d has no content: %w", id, model.ErrNotFound)
	}

	rc, err := s.storage.Download(ctx, model.ContentKey(id))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Module{}, nil, err
		}
		return model.Module{}, nil, fmt.Errorf("failed to download module content: %w", err)
	}

	return module, rc, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
