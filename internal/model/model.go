package model

import (
	"context"
	"time"
)

// Role represents a user's access level.
type Role string

const (
	// RoleUser is a regular participant who answers or rates items.
	RoleUser Role = "user"
	// RoleAdmin is an administrator who loads datasets and reads results.
	RoleAdmin Role = "admin"
)

// User represents a system user.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// ItemKind selects the payload shape of an item.
type ItemKind string

const (
	// KindQuiz is a question with a choice list and a single correct answer.
	KindQuiz ItemKind = "quiz"
	// KindResponseSet is a conversation with several model outputs to rate.
	KindResponseSet ItemKind = "response_set"
)

// Item is one unit of evaluation. Exactly one of Quiz or ResponseSet is
// set, matching Kind. ItemID is the dataset-supplied stable identifier and
// the join key for responses; SequenceNumber is display order only.
type Item struct {
	ID             int64    `json:"-"`
	ItemID         int64    `json:"item_id"`
	SequenceNumber int64    `json:"sequence_number"`
	Category       string   `json:"category"`
	Kind           ItemKind `json:"kind"`

	Quiz        *QuizPayload        `json:"quiz,omitempty"`
	ResponseSet *ResponseSetPayload `json:"response_set,omitempty"`
}

// QuizPayload holds a multiple-choice question. Answer is the index into
// Choices of the correct choice.
type QuizPayload struct {
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
	Answer   int64    `json:"answer"`
}

// Turn is a single message in a conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CandidateResponse is one model's output for a response-set item.
type CandidateResponse struct {
	Model  string `json:"model"`
	Output string `json:"output"`
}

// ResponseSetPayload holds a conversation and the candidate responses to
// rate against it.
type ResponseSetPayload struct {
	History   []Turn              `json:"history"`
	Responses []CandidateResponse `json:"responses"`
}

// Models returns the candidate model names in payload order.
func (p *ResponseSetPayload) Models() []string {
	names := make([]string, 0, len(p.Responses))
	for _, r := range p.Responses {
		names = append(names, r.Model)
	}
	return names
}

// Response is one recorded judgment. ModelName is empty for quiz items,
// where Value is the selected choice index; for response-set items
// ModelName names the rated candidate and Value is a 1-5 rating.
type Response struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	ItemID     int64     `json:"item_id"`
	ModelName  string    `json:"model,omitempty"`
	Value      int64     `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ResponseDetail is a ledger row joined with item and user metadata.
type ResponseDetail struct {
	Response
	Category string `json:"category"`
	Username string `json:"username"`
}

// ProgressEntry reports the recorded state of one item for one user.
// Quiz items use Answered and SelectedChoice; response-set items carry the
// expected model list and whatever subset of ratings exists. Deciding
// whether a partial rating map counts as "done" is left to the caller.
type ProgressEntry struct {
	ItemID         int64            `json:"item_id"`
	SequenceNumber int64            `json:"sequence_number"`
	Kind           ItemKind         `json:"kind"`
	Answered       bool             `json:"answered"`
	SelectedChoice *int64           `json:"selected_choice,omitempty"`
	Models         []string         `json:"models,omitempty"`
	Ratings        map[string]int64 `json:"ratings,omitempty"`
}

// ModelStat is the mean rating for one candidate model. Groups with no
// ratings are never reported.
type ModelStat struct {
	ModelName  string  `json:"model"`
	MeanRating float64 `json:"mean_rating"`
	Count      int64   `json:"count"`
}

// CategoryStat is the mean rating across one item category.
type CategoryStat struct {
	Category   string  `json:"category"`
	MeanRating float64 `json:"mean_rating"`
	Count      int64   `json:"count"`
}

// ModelCategoryStat is the mean rating for one (category, model) pair.
type ModelCategoryStat struct {
	Category   string  `json:"category"`
	ModelName  string  `json:"model"`
	MeanRating float64 `json:"mean_rating"`
	Count      int64   `json:"count"`
}

// ItemAccuracy reports answer counts for one quiz item. AccuracyPercent is
// nil when nobody has answered yet, never zero.
type ItemAccuracy struct {
	ItemID          int64    `json:"item_id"`
	SequenceNumber  int64    `json:"sequence_number"`
	Answered        int64    `json:"answered"`
	Correct         int64    `json:"correct"`
	AccuracyPercent *float64 `json:"accuracy_percent"`
}

// ServerConfig holds runtime parameters set via CLI flags.
type ServerConfig struct {
	Lang          string // UI message language (en, ko)
	SecureCookies bool   // Set Secure flag on cookies (disable for local dev)
}
