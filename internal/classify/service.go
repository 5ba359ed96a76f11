package classify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/wastewise/internal/categories"
	"github.com/JaimeStill/wastewise/internal/history"
	"github.com/JaimeStill/wastewise/internal/vision"
	"github.com/JaimeStill/wastewise/pkg/cache"
	"github.com/JaimeStill/wastewise/pkg/storage"
)

// ArchivePrefix is the storage key prefix for archived inline images.
const ArchivePrefix = "classifications/"

type service struct {
	classifier     Classifier
	categories     CategoryFinder
	recorder       Recorder
	archive        storage.System
	events         cache.System
	logger         *slog.Logger
	maxRequestSize int64
}

// New creates the classification pipeline. archive may be nil to disable
// image archival. events receives a JSON Event per stored classification;
// a disabled cache drops them.
func New(
	classifier Classifier,
	categories CategoryFinder,
	recorder Recorder,
	archive storage.System,
	events cache.System,
	logger *slog.Logger,
	maxRequestSize int64,
) System {
	return &service{
		classifier:     classifier,
		categories:     categories,
		recorder:       recorder,
		archive:        archive,
		events:         events,
		logger:         logger.With("system", "classify"),
		maxRequestSize: maxRequestSize,
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger, s.maxRequestSize)
}

func (s *service) Classify(ctx context.Context, cmd Command) (*Response, error) {
	in, err := vision.NewInput(cmd.ImageBase64, cmd.ImageURL)
	if err != nil {
		failuresTotal.WithLabelValues("input").Inc()
		return nil, err
	}

	result, imageKey, err := s.analyze(ctx, in)
	if err != nil {
		failuresTotal.WithLabelValues("vision").Inc()
		return nil, err
	}

	rec, cat, err := s.record(ctx, in, result, imageKey)
	if err != nil {
		if imageKey != nil {
			s.discard(ctx, *imageKey)
		}
		return nil, err
	}

	classificationsTotal.WithLabelValues(cat.Name).Inc()
	s.publish(ctx, rec)

	s.logger.InfoContext(ctx, "waste classified",
		"history_id", rec.ID,
		"category", cat.Name,
		"confidence", rec.ConfidenceScore,
		"degraded", result.Degraded,
		"archived", imageKey != nil,
	)

	return newResponse(rec, cat, result), nil
}

// analyze calls the vision model and, for inline images with archival
// enabled, uploads the image concurrently. An archive failure is logged
// and the record is stored without a key.
func (s *service) analyze(ctx context.Context, in vision.Input) (*vision.Result, *string, error) {
	var (
		result   *vision.Result
		imageKey *string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := s.classifier.Classify(gctx, in)
		if err != nil {
			return err
		}
		result = r
		return nil
	})

	if s.archive != nil && in.Inline() {
		key := fmt.Sprintf("%s%s.%s", ArchivePrefix, uuid.NewString(), in.Image.Extension())
		g.Go(func() error {
			err := s.archive.Upload(gctx, key, bytes.NewReader(in.Image.Data), in.Image.MediaType)
			if err != nil {
				if gctx.Err() == nil {
					failuresTotal.WithLabelValues("archive").Inc()
					s.logger.WarnContext(ctx, "image archival failed", "key", key, "error", err)
				}
				s.discard(ctx, key)
				return nil
			}
			imageKey = &key
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if imageKey != nil {
			s.discard(ctx, *imageKey)
		}
		return nil, nil, err
	}

	return result, imageKey, nil
}

func (s *service) record(
	ctx context.Context,
	in vision.Input,
	result *vision.Result,
	imageKey *string,
) (*history.Record, *categories.Category, error) {
	cat, err := s.categories.FindByName(ctx, result.Category)
	if err != nil {
		failuresTotal.WithLabelValues("category").Inc()
		if errors.Is(err, categories.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, result.Category)
		}
		return nil, nil, fmt.Errorf("lookup category: %w", err)
	}

	imageURL := in.URL
	if imageURL == "" {
		imageURL = ImagePlaceholder
	}

	rec, err := s.recorder.Create(ctx, history.CreateCommand{
		CategoryID:    cat.ID,
		ImageURL:      imageURL,
		ImageKey:      imageKey,
		DetectedItems: result.DetectedItems,
		Confidence:    result.Confidence,
		ModelName:     result.Model,
		ProviderName:  result.Provider,
	})
	if err != nil {
		failuresTotal.WithLabelValues("record").Inc()
		return nil, nil, err
	}

	return rec, cat, nil
}

// discard removes an uploaded image whose request failed. It runs on a
// context detached from cancellation so a cancelled request still cleans up.
func (s *service) discard(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := s.archive.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to remove orphaned image", "key", key, "error", err)
	}
}

func (s *service) publish(ctx context.Context, rec *history.Record) {
	event := Event{
		HistoryID:  rec.ID,
		Category:   rec.CategoryName,
		Confidence: rec.ConfidenceScore,
		CreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	channel := s.events.Key("classifications")
	if err := s.events.Publish(ctx, channel, event); err != nil {
		s.logger.WarnContext(ctx, "classification event not published", "channel", channel, "error", err)
	}
}
