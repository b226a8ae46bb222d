package impl

import (
	"context"
	"log/slog"
	"net/http"

	"market/config"
	deliverycontext "market/internal/delivery/context"
	domainerrors "market/internal/domain/errors"
	"market/internal/domain/repository"
	"market/internal/errors"
	"market/internal/usecase"

	"github.com/google/uuid"
)

// Hooks are optional checks run inside the write transaction, before the
// record is touched.
type Hooks[T any] struct {
	BeforeCreate func(ctx context.Context, tx repository.Store, entity *T) error
	BeforeUpdate func(ctx context.Context, tx repository.Store, id uuid.UUID, fields repository.Fields) error
}

// crudService implements usecase.Service for one entity type.
type crudService[T any] struct {
	store      repository.Store
	repo       func(repository.Store) repository.Repository[T]
	name       string
	hooks      Hooks[T]
	pagination config.PaginationConfig
	logger     *slog.Logger
}

// NewService builds the generic service for the entity whose repository repo
// selects from a store. name labels log lines and not-found errors.
func NewService[T any](
	store repository.Store,
	name string,
	repo func(repository.Store) repository.Repository[T],
	pagination config.PaginationConfig,
	logger *slog.Logger,
	hooks Hooks[T],
) usecase.Service[T] {
	return &crudService[T]{
		store:      store,
		repo:       repo,
		name:       name,
		hooks:      hooks,
		pagination: pagination,
		logger:     logger,
	}
}

func (srv *crudService[T]) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// fail logs err with a level matching its kind and returns it unchanged.
func (srv *crudService[T]) fail(ctx context.Context, op string, err error) error {
	level := slog.LevelError
	if domainerrors.Resolve(err).HTTPCode() < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	srv.log(ctx).Log(ctx, level, "Storage operation failed",
		slog.String("entity", srv.name),
		slog.String("op", op),
		slog.Any("error", err),
	)

	return err
}

func (srv *crudService[T]) notFound(id uuid.UUID) error {
	return domainerrors.ErrNotFound.WithDetails(srv.name + " " + id.String())
}

func (srv *crudService[T]) page(page repository.Page) repository.Page {
	return page.Normalize(srv.pagination.DefaultLimit, srv.pagination.MaxLimit)
}

func (srv *crudService[T]) create(ctx context.Context, tx repository.Store, entity *T) error {
	if srv.hooks.BeforeCreate != nil {
		if err := srv.hooks.BeforeCreate(ctx, tx, entity); err != nil {
			return err
		}
	}

	return srv.repo(tx).Create(ctx, entity)
}

func (srv *crudService[T]) update(ctx context.Context, tx repository.Store, id uuid.UUID, fields repository.Fields) (*T, error) {
	if srv.hooks.BeforeUpdate != nil {
		if err := srv.hooks.BeforeUpdate(ctx, tx, id, fields); err != nil {
			return nil, err
		}
	}

	updated, err := srv.repo(tx).Update(ctx, id, fields)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, srv.notFound(id)
	}

	return updated, err
}

func (srv *crudService[T]) Create(ctx context.Context, entity *T) error {
	err := srv.store.Execute(ctx, func(ctx context.Context, tx repository.Store) error {
		return srv.create(ctx, tx, entity)
	})
	if err != nil {
		return srv.fail(ctx, "create", err)
	}

	return nil
}

func (srv *crudService[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	entity, err := srv.repo(srv.store).FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, srv.fail(ctx, "get", err)
	}

	return entity, nil
}

func (srv *crudService[T]) List(ctx context.Context, page repository.Page) (*usecase.PageResult[T], error) {
	page = srv.page(page)
	repo := srv.repo(srv.store)

	items, err := repo.List(ctx, page)
	if err != nil {
		return nil, srv.fail(ctx, "list", err)
	}
	total, err := repo.Count(ctx)
	if err != nil {
		return nil, srv.fail(ctx, "count", err)
	}

	return &usecase.PageResult[T]{Items: items, Offset: page.Offset, Limit: page.Limit, Total: total}, nil
}

func (srv *crudService[T]) Update(ctx context.Context, id uuid.UUID, fields repository.Fields) (*T, error) {
	var updated *T
	err := srv.store.Execute(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		updated, err = srv.update(ctx, tx, id, fields)

		return err
	})
	if err != nil {
		return nil, srv.fail(ctx, "update", err)
	}

	return updated, nil
}

func (srv *crudService[T]) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := srv.repo(srv.store).Delete(ctx, id)
	if err != nil {
		return false, srv.fail(ctx, "delete", err)
	}

	return deleted, nil
}

func (srv *crudService[T]) FilterBy(ctx context.Context, fields repository.Fields) ([]*T, error) {
	entities, err := srv.repo(srv.store).FilterBy(ctx, fields)
	if err != nil {
		return nil, srv.fail(ctx, "filter", err)
	}

	return entities, nil
}

func (srv *crudService[T]) Count(ctx context.Context) (int64, error) {
	count, err := srv.repo(srv.store).Count(ctx)
	if err != nil {
		return 0, srv.fail(ctx, "count", err)
	}

	return count, nil
}

func (srv *crudService[T]) Search(ctx context.Context, query string, fields []string, page repository.Page) ([]*T, error) {
	entities, err := srv.repo(srv.store).Search(ctx, query, fields, srv.page(page))
	if err != nil {
		return nil, srv.fail(ctx, "search", err)
	}

	return entities, nil
}

func (srv *crudService[T]) BulkCreate(ctx context.Context, entities []*T) error {
	err := srv.store.Execute(ctx, func(ctx context.Context, tx repository.Store) error {
		for i, entity := range entities {
			if err := srv.create(ctx, tx, entity); err != nil {
				return errors.WithMessagef(err, "record %d", i)
			}
		}

		return nil
	})
	if err != nil {
		return srv.fail(ctx, "bulk create", err)
	}

	return nil
}

func (srv *crudService[T]) BulkUpdate(ctx context.Context, updates []usecase.BulkUpdate) ([]*T, error) {
	result := make([]*T, 0, len(updates))
	err := srv.store.Execute(ctx, func(ctx context.Context, tx repository.Store) error {
		result = result[:0]
		for _, u := range updates {
			updated, err := srv.update(ctx, tx, u.ID, u.Fields)
			if err != nil {
				return err
			}
			result = append(result, updated)
		}

		return nil
	})
	if err != nil {
		return nil, srv.fail(ctx, "bulk update", err)
	}

	return result, nil
}
