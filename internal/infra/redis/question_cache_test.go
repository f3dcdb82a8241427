package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"quizhunt-service/internal/domain"
	"quizhunt-service/internal/infra/memory"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{QuestionLoader: seededStore(t)}
	cache := NewQuestionCache(client, loader, time.Minute)

	set, err := cache.GetQuestions(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("event:quiz-1:questions") {
		t.Fatalf("expected redis hash to be written")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := cache.GetQuestions(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get cached questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	q, ok := cached.At(1)
	if !ok || q.Answer != "Paris" || q.IncorrectScore != -5 || cached.Len() != set.Len() {
		t.Fatalf("expected full question round trip, got %+v", q)
	}
}

func TestQuestionCacheInvalidateDeletesKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	loader := &countingLoader{QuestionLoader: seededStore(t)}
	cache := NewQuestionCache(newClient(mr), loader, time.Minute)

	_, _ = cache.GetQuestions(ctx, "quiz-1")
	if err := cache.Invalidate(ctx, "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("event:quiz-1:questions") {
		t.Fatalf("expected redis key to be removed")
	}
	_, _ = cache.GetQuestions(ctx, "quiz-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestQuestionCacheDropsLoadRacingInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := seededStore(t)
	loader := &gatedLoader{QuestionLoader: store, started: make(chan struct{}), release: make(chan struct{})}
	cache := NewQuestionCache(newClient(mr), loader, time.Minute)

	done := make(chan domain.QuestionSet)
	go func() {
		set, _ := cache.GetQuestions(ctx, "quiz-1")
		done <- set
	}()
	<-loader.started

	// The society edits the event while the old set is still being loaded.
	if err := store.CreateQuestion(ctx, domain.Question{ID: "q3", EventID: "quiz-1", Level: 2, Prompt: "3*3", Answer: "9"}); err != nil {
		t.Fatalf("create question: %v", err)
	}
	if err := cache.Invalidate(ctx, "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	close(loader.release)
	if set := <-done; set.Len() != 2 {
		t.Fatalf("expected the in-flight load to return the old set, got %d", set.Len())
	}
	if mr.Exists("event:quiz-1:questions") {
		t.Fatalf("expected the stale set not to be cached")
	}

	set, err := cache.GetQuestions(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if set.Len() != 3 {
		t.Fatalf("expected the edited set after invalidate, got %d questions", set.Len())
	}
	if !mr.Exists("event:quiz-1:questions") {
		t.Fatalf("expected the fresh set to be cached")
	}
}

// gatedLoader holds its first load, already read, until release is closed.
type gatedLoader struct {
	QuestionLoader
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (l *gatedLoader) LoadQuestions(ctx context.Context, eventID string) ([]domain.Question, error) {
	questions, err := l.QuestionLoader.LoadQuestions(ctx, eventID)
	first := false
	l.once.Do(func() { first = true })
	if first {
		close(l.started)
		<-l.release
	}
	return questions, err
}

type countingLoader struct {
	QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context, eventID string) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx, eventID)
}

func seededStore(t *testing.T) *memory.CatalogStore {
	t.Helper()
	ctx := context.Background()
	store := memory.NewCatalogStore()
	start := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)
	if err := store.CreateEvent(ctx, domain.Event{ID: "quiz-1", SocietyID: "soc-1", Title: "Quiz1", StartTime: start, EndTime: start.Add(time.Hour)}); err != nil {
		t.Fatalf("create event: %v", err)
	}
	questions := []domain.Question{
		{ID: "q1", EventID: "quiz-1", Level: 0, Prompt: "2+2", Answer: "4", CorrectScore: 10, IncorrectScore: -2},
		{ID: "q2", EventID: "quiz-1", Level: 1, Prompt: "capital of France", Answer: "Paris", CorrectScore: 10, IncorrectScore: -5},
	}
	for _, q := range questions {
		if err := store.CreateQuestion(ctx, q); err != nil {
			t.Fatalf("create question: %v", err)
		}
	}
	return store
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
