package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"lawsuit_tracker_go/apperrors"
	"lawsuit_tracker_go/repository"
)

// Hooks injects entity-specific rules into the generic CRUD flow
type Hooks[T any] interface {
	BeforeCreate(ctx context.Context, entity *T) error
	BeforeUpdate(ctx context.Context, id string, patch repository.Patch) error
	BeforeDelete(ctx context.Context, id string) error
	ProcessListOptions(ctx context.Context, opts repository.ListOptions) (repository.ListOptions, error)
}

// WriteGuards is implemented by rule sets whose checks must also hold at
// write time. The guards are added to the UPDATE or DELETE statement; when
// one fails the hook runs again to report which rule broke.
type WriteGuards interface {
	UpdateGuards(ctx context.Context, id string, patch repository.Patch) []repository.Guard
	DeleteGuards(ctx context.Context, id string) []repository.Guard
}

// NoopHooks accepts everything; embed it to override only some hooks
type NoopHooks[T any] struct{}

func (NoopHooks[T]) BeforeCreate(context.Context, *T) error { return nil }

func (NoopHooks[T]) BeforeUpdate(context.Context, string, repository.Patch) error { return nil }

func (NoopHooks[T]) BeforeDelete(context.Context, string) error { return nil }

func (NoopHooks[T]) ProcessListOptions(_ context.Context, opts repository.ListOptions) (repository.ListOptions, error) {
	return opts, nil
}

type identifiable interface {
	GetID() string
}

// Service runs every mutation through the hooks and logs intent and outcome.
// Errors are logged and returned unchanged.
type Service[T any] struct {
	repo   *repository.Repository[T]
	hooks  Hooks[T]
	log    *slog.Logger
	entity string
}

// NewService composes a repository with its rule hooks
func NewService[T any](repo *repository.Repository[T], hooks Hooks[T], log *slog.Logger) *Service[T] {
	if hooks == nil {
		hooks = NoopHooks[T]{}
	}
	return &Service[T]{
		repo:   repo,
		hooks:  hooks,
		log:    log.With("entity", repo.Resource()),
		entity: repo.Resource(),
	}
}

// Repository exposes the underlying repository to rule sets built on the service
func (s *Service[T]) Repository() *repository.Repository[T] {
	return s.repo
}

// Create validates entity through BeforeCreate and stores it
func (s *Service[T]) Create(ctx context.Context, entity *T) (*T, error) {
	s.log.InfoContext(ctx, "Creating new "+s.entity)
	s.log.DebugContext(ctx, "create payload", "data", entity)

	if err := s.hooks.BeforeCreate(ctx, entity); err != nil {
		s.log.ErrorContext(ctx, "Error creating "+s.entity, "error", err.Error())
		return nil, err
	}
	if err := s.repo.Create(ctx, entity); err != nil {
		s.log.ErrorContext(ctx, "Error creating "+s.entity, "error", err.Error())
		return nil, err
	}

	s.log.InfoContext(ctx, s.entity+" created successfully", "id", idOf(entity))
	return entity, nil
}

// GetByID loads one entity
func (s *Service[T]) GetByID(ctx context.Context, id string, preloads ...repository.Preload) (*T, error) {
	s.log.InfoContext(ctx, "Fetching "+s.entity+" by ID", "id", id)

	entity, err := s.repo.FindByID(ctx, id, preloads...)
	if err != nil {
		s.log.ErrorContext(ctx, "Error fetching "+s.entity+" by ID", "id", id, "error", err.Error())
		return nil, err
	}
	return entity, nil
}

// GetAll lists entities after ProcessListOptions has adjusted the options
func (s *Service[T]) GetAll(ctx context.Context, opts repository.ListOptions) (*repository.Page[T], error) {
	s.log.InfoContext(ctx, "Fetching all "+s.entity+"s", "page", opts.Page, "limit", opts.Limit, "filter", opts.Filter)

	processed, err := s.hooks.ProcessListOptions(ctx, opts)
	if err != nil {
		s.log.ErrorContext(ctx, "Error fetching "+s.entity+"s", "error", err.Error())
		return nil, err
	}
	page, err := s.repo.FindAll(ctx, processed)
	if err != nil {
		s.log.ErrorContext(ctx, "Error fetching "+s.entity+"s", "error", err.Error())
		return nil, err
	}
	return page, nil
}

// Update validates patch through BeforeUpdate and applies it
func (s *Service[T]) Update(ctx context.Context, id string, patch repository.Patch) (*T, error) {
	s.log.InfoContext(ctx, "Updating "+s.entity, "id", id, "fields", patchFields(patch))

	if err := s.hooks.BeforeUpdate(ctx, id, patch); err != nil {
		s.log.ErrorContext(ctx, "Error updating "+s.entity, "id", id, "error", err.Error())
		return nil, err
	}
	var guards []repository.Guard
	if wg, ok := s.hooks.(WriteGuards); ok {
		guards = wg.UpdateGuards(ctx, id, patch)
	}
	entity, err := s.repo.Update(ctx, id, patch, guards...)
	if errors.Is(err, repository.ErrGuardRejected) {
		err = s.recheck(s.hooks.BeforeUpdate(ctx, id, patch))
	}
	if err != nil {
		s.log.ErrorContext(ctx, "Error updating "+s.entity, "id", id, "error", err.Error())
		return nil, err
	}

	s.log.InfoContext(ctx, s.entity+" updated successfully", "id", id)
	return entity, nil
}

// Delete checks BeforeDelete and removes the entity permanently
func (s *Service[T]) Delete(ctx context.Context, id string) error {
	s.log.InfoContext(ctx, "Deleting "+s.entity, "id", id)

	if err := s.hooks.BeforeDelete(ctx, id); err != nil {
		s.log.ErrorContext(ctx, "Error deleting "+s.entity, "id", id, "error", err.Error())
		return err
	}
	var guards []repository.Guard
	if wg, ok := s.hooks.(WriteGuards); ok {
		guards = wg.DeleteGuards(ctx, id)
	}
	err := s.repo.Delete(ctx, id, guards...)
	if errors.Is(err, repository.ErrGuardRejected) {
		err = s.recheck(s.hooks.BeforeDelete(ctx, id))
	}
	if err != nil {
		s.log.ErrorContext(ctx, "Error deleting "+s.entity, "id", id, "error", err.Error())
		return err
	}

	s.log.InfoContext(ctx, s.entity+" deleted successfully", "id", id)
	return nil
}

// recheck turns a rejected guard into the rule error found by re-running
// the hook. A hook that now passes means the state moved under us twice.
func (s *Service[T]) recheck(err error) error {
	if err != nil {
		return err
	}
	return &apperrors.ConflictError{Message: s.entity + " was modified concurrently, please retry"}
}

func idOf(entity any) string {
	if e, ok := entity.(identifiable); ok {
		return e.GetID()
	}
	return ""
}

func patchFields(patch repository.Patch) []string {
	fields := make([]string, 0, len(patch))
	for k := range patch {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}
