package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/wastewise/pkg/pagination"
	"github.com/JaimeStill/wastewise/pkg/query"
	"github.com/JaimeStill/wastewise/pkg/repository"
	"github.com/JaimeStill/wastewise/pkg/storage"
)

// MaxFeedbackLength bounds user_feedback in characters.
const MaxFeedbackLength = 2000

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a history repository implementing System. store may be nil
// when image archival is disabled.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "history"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Record, error) {
	items := cmd.DetectedItems
	if items == nil {
		items = []string{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal detected_items: %w", err)
	}

	insertQ := `
		INSERT INTO public.classification_history(
			waste_category_id, image_url, image_key, detected_items,
			confidence_score, model_name, provider_name
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	insertArgs := []any{
		cmd.CategoryID,
		cmd.ImageURL,
		cmd.ImageKey,
		itemsJSON,
		clampConfidence(cmd.Confidence),
		cmd.ModelName,
		cmd.ProviderName,
	}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Record, error) {
		var id uuid.UUID
		if err := tx.QueryRowContext(ctx, insertQ, insertArgs...).Scan(&id); err != nil {
			return Record{}, err
		}

		q, args := query.NewBuilder(projection).BuildSingle("id", id)
		return repository.QueryOne(ctx, tx, q, args, scanRecord)
	})
	if err != nil {
		return nil, fmt.Errorf("create classification: %w", errs.Map(err))
	}

	r.logger.InfoContext(ctx, "classification recorded",
		"id", rec.ID,
		"category", rec.CategoryName,
		"confidence", rec.ConfidenceScore,
	)
	return &rec, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort...)
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	pageSQL, pageArgs := qb.BuildOffset(page.Limit, page.Offset)

	var (
		total int
		items []Record
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := repository.QueryCount(gctx, r.db, countSQL, countArgs)
		if err != nil {
			return fmt.Errorf("count classifications: %w", err)
		}
		total = n
		return nil
	})

	g.Go(func() error {
		rows, err := repository.QueryMany(gctx, r.db, pageSQL, pageArgs, scanRecord)
		if err != nil {
			return fmt.Errorf("query classifications: %w", err)
		}
		items = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(items, total, page)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Record, error) {
	q, args := query.NewBuilder(projection).BuildSingle("id", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, errs.Map(err)
	}
	return &rec, nil
}

func (r *repo) Feedback(ctx context.Context, id uuid.UUID, cmd FeedbackCommand) (*Record, error) {
	if cmd.UserFeedback != nil && utf8.RuneCountInString(*cmd.UserFeedback) > MaxFeedbackLength {
		return nil, fmt.Errorf("%w: user_feedback exceeds %d characters", ErrInvalidFeedback, MaxFeedbackLength)
	}

	updateQ := `
		UPDATE public.classification_history
		SET is_correct = COALESCE($1, is_correct),
			user_feedback = COALESCE($2, user_feedback),
			updated_at = NOW()
		WHERE id = $3`

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Record, error) {
		if err := repository.ExecExpectOne(ctx, tx, updateQ, cmd.IsCorrect, cmd.UserFeedback, id); err != nil {
			return Record{}, err
		}

		q, args := query.NewBuilder(projection).BuildSingle("id", id)
		return repository.QueryOne(ctx, tx, q, args, scanRecord)
	})
	if err != nil {
		return nil, errs.Map(err)
	}

	feedbackTotal.WithLabelValues(feedbackLabel(cmd.IsCorrect)).Inc()

	r.logger.InfoContext(ctx, "feedback recorded",
		"id", id,
		"is_correct", rec.IsCorrect,
		"has_comment", rec.UserFeedback != nil,
	)
	return &rec, nil
}

func (r *repo) Stats(ctx context.Context) (*Stats, error) {
	totalsQ := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_correct),
			COUNT(*) FILTER (WHERE NOT is_correct),
			COUNT(*) FILTER (WHERE is_correct IS NULL)
		FROM public.classification_history`

	byCategoryQ := `
		SELECT w.id, w.name, w.color_code, COUNT(h.id)
		FROM public.classification_history h
		JOIN public.waste_categories w ON w.id = h.waste_category_id
		GROUP BY w.id, w.name, w.color_code
		ORDER BY COUNT(h.id) DESC, w.name ASC`

	return repository.WithReadTx(ctx, r.db, func(tx *sql.Tx) (*Stats, error) {
		var s Stats
		err := tx.QueryRowContext(ctx, totalsQ).Scan(
			&s.ItemsClassified,
			&s.Correct,
			&s.Incorrect,
			&s.Unrated,
		)
		if err != nil {
			return nil, fmt.Errorf("query totals: %w", err)
		}

		s.ByCategory, err = repository.QueryMany(ctx, tx, byCategoryQ, nil, scanCategoryCount)
		if err != nil {
			return nil, fmt.Errorf("query category counts: %w", err)
		}

		if rated := s.Correct + s.Incorrect; rated > 0 {
			s.Accuracy = math.Round(float64(s.Correct)/float64(rated)*1000) / 10
		}

		return &s, nil
	})
}

func (r *repo) Image(ctx context.Context, id uuid.UUID) (*storage.Object, error) {
	rec, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.ImageKey == nil || r.storage == nil {
		return nil, ErrNoImage
	}

	ok, err := r.storage.Exists(ctx, *rec.ImageKey)
	if err != nil {
		return nil, fmt.Errorf("check image: %w", err)
	}
	if !ok {
		r.logger.WarnContext(ctx, "archived image missing from storage", "id", id, "key", *rec.ImageKey)
		return nil, ErrNoImage
	}

	obj, err := r.storage.Download(ctx, *rec.ImageKey)
	if err != nil {
		// deleted between the existence check and the download
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoImage
		}
		return nil, fmt.Errorf("download image: %w", err)
	}
	return obj, nil
}

func scanCategoryCount(s repository.Scanner) (CategoryCount, error) {
	var c CategoryCount
	err := s.Scan(&c.CategoryID, &c.Category, &c.ColorCode, &c.Count)
	return c, err
}

func clampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c):
		return 0
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

func feedbackLabel(isCorrect *bool) string {
	switch {
	case isCorrect == nil:
		return "comment"
	case *isCorrect:
		return "correct"
	default:
		return "incorrect"
	}
}
