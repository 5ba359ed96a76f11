package categories

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/wastewise/pkg/cache"
	"github.com/JaimeStill/wastewise/pkg/query"
	"github.com/JaimeStill/wastewise/pkg/repository"
)

type repo struct {
	db     *sql.DB
	cache  cache.System
	logger *slog.Logger
}

// New creates a category repository implementing System. Lookups read
// through cache; a disabled cache sends every lookup to the database.
func New(db *sql.DB, cache cache.System, logger *slog.Logger) System {
	return &repo{
		db:     db,
		cache:  cache,
		logger: logger.With("system", "categories"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context) ([]Category, error) {
	key := r.cache.Key("categories", "all")

	var cached []Category
	if r.lookup(ctx, key, &cached) {
		return cached, nil
	}

	q, args := query.NewBuilder(projection, defaultSort).Build()
	items, err := repository.QueryMany(ctx, r.db, q, args, scanCategory)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}

	r.store(ctx, key, items)
	return items, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Category, error) {
	q, args := query.NewBuilder(projection).BuildSingle("id", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCategory)
	if err != nil {
		return nil, errs.Map(err)
	}
	return &c, nil
}

func (r *repo) FindByName(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNotFound
	}

	key := r.cache.Key("categories", "name", strings.ToLower(name))

	var cached Category
	if r.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	q, args := query.
		NewBuilder(projection).
		WhereEqualsFold("name", &name).
		BuildFirst()

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCategory)
	if err != nil {
		return nil, errs.Map(err)
	}

	r.store(ctx, key, c)
	return &c, nil
}

// lookup reports a cache hit. Cache errors are logged and treated as misses.
func (r *repo) lookup(ctx context.Context, key string, dest any) bool {
	hit, err := r.cache.Get(ctx, key, dest)
	if err != nil {
		r.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (r *repo) store(ctx context.Context, key string, value any) {
	if err := r.cache.Set(ctx, key, value); err != nil {
		r.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}
