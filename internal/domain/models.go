package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Role identifies which kind of principal is calling.
type Role string

const (
	RoleSociety Role = "society"
	RolePlayer  Role = "player"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleSociety || r == RolePlayer
}

// Principal is the authenticated caller resolved by the identity layer.
type Principal struct {
	ID   string
	Role Role
}

// Event is a single quiz/hunt instance owned by a society.
type Event struct {
	ID          string    `json:"id"`
	SocietyID   string    `json:"societyId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks the fields a society must provide.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return Invalid("title is required")
	}
	if e.StartTime.IsZero() || e.EndTime.IsZero() {
		return Invalid("startTime and endTime are required")
	}
	if e.EndTime.Before(e.StartTime) {
		return Invalid("endTime must not be before startTime")
	}
	return nil
}

// Question is one step of an event. Level is its position in the sequence.
type Question struct {
	ID             string `json:"id"`
	EventID        string `json:"eventId"`
	Level          int    `json:"level"`
	Prompt         string `json:"prompt"`
	Answer         string `json:"answer"`
	CorrectScore   int    `json:"correctScore"`
	IncorrectScore int    `json:"incorrectScore"`
}

// Validate checks the fields a society must provide.
func (q Question) Validate() error {
	if q.Level < 0 {
		return Invalid("level must not be negative")
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return Invalid("prompt is required")
	}
	if q.Answer == "" {
		return Invalid("answer is required")
	}
	return nil
}

// Matches compares a submitted answer with the expected one. The comparison is exact.
func (q Question) Matches(answer string) bool {
	return answer == q.Answer
}

// ForPlayer strips the expected answer.
func (q Question) ForPlayer() PlayQuestion {
	return PlayQuestion{
		EventID:        q.EventID,
		Level:          q.Level,
		Prompt:         q.Prompt,
		CorrectScore:   q.CorrectScore,
		IncorrectScore: q.IncorrectScore,
	}
}

// PlayQuestion is what a player sees of the current question.
type PlayQuestion struct {
	EventID        string `json:"eventId"`
	Level          int    `json:"level"`
	Prompt         string `json:"prompt"`
	CorrectScore   int    `json:"correctScore"`
	IncorrectScore int    `json:"incorrectScore"`
}

// Rule is free text attached to an event.
type Rule struct {
	ID      string `json:"id"`
	EventID string `json:"eventId"`
	Content string `json:"content"`
}

// Validate checks the fields a society must provide.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return Invalid("content is required")
	}
	return nil
}

// Score is the ledger row tracking one player's progress through one event.
type Score struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player"`
	EventID   string    `json:"eventId"`
	Level     int       `json:"level"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Outcome is the verdict on a submitted answer.
type Outcome string

const (
	OutcomeCorrect   Outcome = "Correct"
	OutcomeIncorrect Outcome = "Incorrect"
)

// AnswerResult summarizes a submission and the row state after it.
type AnswerResult struct {
	Outcome Outcome `json:"answer"`
	Level   int     `json:"level"`
	Score   int     `json:"score"`
}

// EventDetail is the player-facing view of an event.
type EventDetail struct {
	Event
	Rules         []Rule `json:"rules"`
	QuestionCount int    `json:"questionCount"`
}

// QuestionSet is the ordered question sequence of one event.
type QuestionSet struct {
	EventID   string
	questions []Question
	byLevel   map[int]int
}

// NewQuestionSet orders questions by level.
func NewQuestionSet(eventID string, questions []Question) QuestionSet {
	sorted := make([]Question, len(questions))
	copy(sorted, questions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })
	idx := make(map[int]int, len(sorted))
	for i, q := range sorted {
		idx[q.Level] = i
	}
	return QuestionSet{EventID: eventID, questions: sorted, byLevel: idx}
}

// Len returns the number of questions.
func (s QuestionSet) Len() int { return len(s.questions) }

// Questions returns the ordered sequence.
func (s QuestionSet) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// At returns the question at level.
func (s QuestionSet) At(level int) (Question, bool) {
	i, ok := s.byLevel[level]
	if !ok {
		return Question{}, false
	}
	return s.questions[i], true
}

// Complete reports whether a player at level has answered every question of a sequence
// that starts at initialLevel.
func (s QuestionSet) Complete(level, initialLevel int) bool {
	return level >= initialLevel+len(s.questions)
}

// Lookup resolves the question for a progress level, separating a finished sequence
// from a gap in the stored levels.
func (s QuestionSet) Lookup(level, initialLevel int) (Question, error) {
	if s.Complete(level, initialLevel) {
		return Question{}, ErrEventComplete
	}
	q, ok := s.At(level)
	if !ok {
		return Question{}, fmt.Errorf("level %d of event %s: %w", level, s.EventID, ErrQuestionNotFound)
	}
	return q, nil
}
