package memory

import (
	"context"
	"testing"
	"time"

	"quizhunt-service/internal/domain"
)

func TestQuestionCacheCaches(t *testing.T) {
	loader := &countingLoader{QuestionLoader: seededStore(t)}
	cache := NewQuestionCache(loader, time.Minute)

	set, err := cache.GetQuestions(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("expected 2 questions, got %d", set.Len())
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.GetQuestions(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuestionCacheInvalidate(t *testing.T) {
	loader := &countingLoader{QuestionLoader: seededStore(t)}
	cache := NewQuestionCache(loader, time.Minute)
	ctx := context.Background()

	_, _ = cache.GetQuestions(ctx, "quiz-1")
	if err := cache.Invalidate(ctx, "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = cache.GetQuestions(ctx, "quiz-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestQuestionCacheExpires(t *testing.T) {
	loader := &countingLoader{QuestionLoader: seededStore(t)}
	cache := NewQuestionCache(loader, time.Minute)
	now := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	_, _ = cache.GetQuestions(context.Background(), "quiz-1")
	now = now.Add(2 * time.Minute)
	_, _ = cache.GetQuestions(context.Background(), "quiz-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}
}

type countingLoader struct {
	QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context, eventID string) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx, eventID)
}

func seededStore(t *testing.T) *CatalogStore {
	t.Helper()
	ctx := context.Background()
	store := NewCatalogStore()
	start := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)
	if err := store.CreateEvent(ctx, domain.Event{ID: "quiz-1", SocietyID: "soc-1", Title: "Quiz1", StartTime: start, EndTime: start.Add(time.Hour)}); err != nil {
		t.Fatalf("create event: %v", err)
	}
	for _, q := range sampleQuestions() {
		if err := store.CreateQuestion(ctx, q); err != nil {
			t.Fatalf("create question: %v", err)
		}
	}
	return store
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", EventID: "quiz-1", Level: 0, Prompt: "2+2", Answer: "4", CorrectScore: 10, IncorrectScore: -2},
		{ID: "q2", EventID: "quiz-1", Level: 1, Prompt: "capital of France", Answer: "Paris", CorrectScore: 10, IncorrectScore: -5},
	}
}
