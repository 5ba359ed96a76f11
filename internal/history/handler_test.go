package history_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/wastewise/internal/history"
	"github.com/JaimeStill/wastewise/pkg/pagination"
	"github.com/JaimeStill/wastewise/pkg/routes"
	"github.com/JaimeStill/wastewise/pkg/storage"
)

type mockSystem struct {
	createFn   func(ctx context.Context, cmd history.CreateCommand) (*history.Record, error)
	listFn     func(ctx context.Context, page pagination.PageRequest, filters history.Filters) (*pagination.PageResult[history.Record], error)
	findFn     func(ctx context.Context, id uuid.UUID) (*history.Record, error)
	feedbackFn func(ctx context.Context, id uuid.UUID, cmd history.FeedbackCommand) (*history.Record, error)
	statsFn    func(ctx context.Context) (*history.Stats, error)
	imageFn    func(ctx context.Context, id uuid.UUID) (*storage.Object, error)
}

func (m *mockSystem) Handler() *history.Handler {
	return history.NewHandler(m, discardLogger(), pageConfig)
}

func (m *mockSystem) Create(ctx context.Context, cmd history.CreateCommand) (*history.Record, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters history.Filters) (*pagination.PageResult[history.Record], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*history.Record, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Feedback(ctx context.Context, id uuid.UUID, cmd history.FeedbackCommand) (*history.Record, error) {
	return m.feedbackFn(ctx, id, cmd)
}

func (m *mockSystem) Stats(ctx context.Context) (*history.Stats, error) {
	return m.statsFn(ctx)
}

func (m *mockSystem) Image(ctx context.Context, id uuid.UUID) (*storage.Object, error) {
	return m.imageFn(ctx, id)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupMux(sys *mockSystem) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	return mux
}

func sampleRecord() history.Record {
	now := time.Now().Truncate(time.Second)
	return history.Record{
		ID:              uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		WasteCategoryID: uuid.MustParse("660e8400-e29b-41d4-a716-446655440000"),
		ImageURL:        "base64_image",
		DetectedItems:   []string{"bottle"},
		ConfidenceScore: 0.92,
		ModelName:       "claude-sonnet-4-5",
		ProviderName:    "anthropic",
		CreatedAt:       now,
		UpdatedAt:       now,
		CategoryName:    "Plastic",
		ColorCode:       "#2196F3",
	}
}

func TestHandlerList(t *testing.T) {
	var got pagination.PageRequest
	var gotFilters history.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, f history.Filters) (*pagination.PageResult[history.Record], error) {
			got, gotFilters = page, f
			result := pagination.NewPageResult([]history.Record{sampleRecord()}, 7, page)
			return &result, nil
		},
	}
	mux := setupMux(sys)

	t.Run("explicit window", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/history?limit=2&offset=4&is_correct=true", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got.Limit != 2 || got.Offset != 4 {
			t.Errorf("page request = %+v", got)
		}
		if gotFilters.IsCorrect == nil || !*gotFilters.IsCorrect {
			t.Errorf("filters = %+v", gotFilters)
		}

		var body pagination.PageResult[history.Record]
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Total != 7 || body.Limit != 2 || body.Offset != 4 || len(body.Data) != 1 {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/history?limit=abc", nil))

		if got.Limit != 20 || got.Offset != 0 {
			t.Errorf("page request = %+v, want limit 20 offset 0", got)
		}
	})

	t.Run("limit above max is capped", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/history?limit=1000", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var body pagination.PageResult[history.Record]
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Limit != 100 || body.Limit != 100 {
			t.Errorf("limit: request %d, response %d, want 100", got.Limit, body.Limit)
		}
	})
}

func TestHandlerListDocumentsLimitCap(t *testing.T) {
	group := (&mockSystem{}).Handler().Routes()

	for _, p := range group.Routes[0].OpenAPI.Parameters {
		if p.Name == "limit" {
			if !strings.Contains(p.Description, "max 100") {
				t.Errorf("limit description = %q", p.Description)
			}
			return
		}
	}
	t.Fatal("limit parameter not documented")
}

func TestHandlerFind(t *testing.T) {
	r := sampleRecord()
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*history.Record, error) {
			if id == r.ID {
				return &r, nil
			}
			return nil, history.ErrNotFound
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"found", "/history/" + r.ID.String(), http.StatusOK},
		{"unknown", "/history/" + uuid.NewString(), http.StatusNotFound},
		{"malformed", "/history/xyz", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}

	t.Run("wraps record in data", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/history/"+r.ID.String(), nil))

		var body struct {
			Data history.Record `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Data.CategoryName != "Plastic" {
			t.Errorf("category_name = %q", body.Data.CategoryName)
		}
	})
}

func TestHandlerFeedback(t *testing.T) {
	r := sampleRecord()
	var got history.FeedbackCommand
	calls := 0
	sys := &mockSystem{
		feedbackFn: func(_ context.Context, id uuid.UUID, cmd history.FeedbackCommand) (*history.Record, error) {
			calls++
			if id != r.ID {
				return nil, history.ErrNotFound
			}
			got = cmd
			out := r
			out.IsCorrect = cmd.IsCorrect
			out.UserFeedback = cmd.UserFeedback
			return &out, nil
		},
	}
	mux := setupMux(sys)

	patch := func(path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("PATCH", path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		mux.ServeHTTP(rec, req)
		return rec
	}

	t.Run("is_correct only", func(t *testing.T) {
		rec := patch("/history/"+r.ID.String(), `{"is_correct": false}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got.IsCorrect == nil || *got.IsCorrect {
			t.Errorf("is_correct = %v", got.IsCorrect)
		}
		if got.UserFeedback != nil {
			t.Error("user_feedback should be absent")
		}
	})

	t.Run("user_feedback only", func(t *testing.T) {
		rec := patch("/history/"+r.ID.String(), `{"user_feedback": "it was glass"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got.IsCorrect != nil {
			t.Error("is_correct should be absent")
		}
		if got.UserFeedback == nil || *got.UserFeedback != "it was glass" {
			t.Errorf("user_feedback = %v", got.UserFeedback)
		}
	})

	t.Run("empty object and empty body", func(t *testing.T) {
		for _, body := range []string{`{}`, ``} {
			rec := patch("/history/"+r.ID.String(), body)
			if rec.Code != http.StatusOK {
				t.Fatalf("body %q: status = %d, want 200", body, rec.Code)
			}
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		before := calls
		rec := patch("/history/"+r.ID.String(), `{"is_correct": }`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if calls != before {
			t.Error("system must not be called for malformed body")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := patch("/history/"+uuid.NewString(), `{"is_correct": true}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		var body map[string]string
		json.NewDecoder(rec.Body).Decode(&body)
		if body["error"] != "classification not found" {
			t.Errorf("error = %q", body["error"])
		}
	})
}

func TestHandlerStats(t *testing.T) {
	sys := &mockSystem{
		statsFn: func(context.Context) (*history.Stats, error) {
			return &history.Stats{ItemsClassified: 3, Correct: 1, Incorrect: 1, Unrated: 1, Accuracy: 50}, nil
		},
	}
	mux := setupMux(sys)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/history/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data history.Stats `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.ItemsClassified != 3 || body.Data.Accuracy != 50 {
		t.Errorf("stats = %+v", body.Data)
	}
}

func TestHandlerImage(t *testing.T) {
	r := sampleRecord()
	sys := &mockSystem{
		imageFn: func(_ context.Context, id uuid.UUID) (*storage.Object, error) {
			if id != r.ID {
				return nil, history.ErrNoImage
			}
			return &storage.Object{
				Body:          io.NopCloser(bytes.NewReader([]byte("jpeg"))),
				ContentType:   "image/jpeg",
				ContentLength: 4,
			}, nil
		},
	}
	mux := setupMux(sys)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/history/"+r.ID.String()+"/image", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "image/jpeg" || rec.Body.String() != "jpeg" {
		t.Errorf("response = %s %q", rec.Header().Get("Content-Type"), rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/history/"+uuid.NewString()+"/image", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
