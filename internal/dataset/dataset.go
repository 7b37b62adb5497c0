// Package dataset parses and validates item dataset files. A dataset is a
// JSON array; each entry is either a quiz question (question, choices,
// answer) or a response set (history, responses). A single invalid entry
// rejects the whole file.
package dataset

import (
	"encoding/json"
	"fmt"

	"github.com/dykim/evalboard/internal/model"
)

// ValidationError describes why a dataset was rejected, naming the
// offending entry.
type ValidationError struct {
	Index  int    // position in the dataset array, -1 for file-level problems
	Field  string // offending field, empty for shape problems
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return "dataset: " + e.Reason
	}
	if e.Field == "" {
		return fmt.Sprintf("dataset item %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("dataset item %d: field %q: %s", e.Index, e.Field, e.Reason)
}

// rawItem uses pointer fields so missing keys are distinguishable from
// zero values.
type rawItem struct {
	ItemID         *int64                     `json:"item_id"`
	SequenceNumber *int64                     `json:"sequence_number"`
	Category       *string                    `json:"category"`
	Question       *string                    `json:"question"`
	Choices        *[]string                  `json:"choices"`
	Answer         *int64                     `json:"answer"`
	History        *[]rawTurn                 `json:"history"`
	Responses      *[]model.CandidateResponse `json:"responses"`
}

type rawTurn struct {
	Role    *string `json:"role"`
	Content *string `json:"content"`
}

// Parse decodes and validates a dataset file. On success every returned
// item carries exactly one payload matching its Kind. Item IDs must be
// unique within the file.
func Parse(data []byte) ([]model.Item, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &ValidationError{Index: -1, Reason: "not a JSON array: " + err.Error()}
	}

	items := make([]model.Item, 0, len(entries))
	seen := make(map[int64]int, len(entries))
	for i, entry := range entries {
		var raw rawItem
		if err := json.Unmarshal(entry, &raw); err != nil {
			return nil, &ValidationError{Index: i, Reason: err.Error()}
		}
		item, err := buildItem(i, raw)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[item.ItemID]; dup {
			return nil, &ValidationError{Index: i, Field: "item_id",
				Reason: fmt.Sprintf("duplicate of item %d", prev)}
		}
		seen[item.ItemID] = i
		items = append(items, item)
	}
	return items, nil
}

func buildItem(i int, raw rawItem) (model.Item, error) {
	var item model.Item

	if raw.ItemID == nil {
		return item, &ValidationError{Index: i, Field: "item_id", Reason: "missing"}
	}
	if raw.SequenceNumber == nil {
		return item, &ValidationError{Index: i, Field: "sequence_number", Reason: "missing"}
	}
	if raw.Category == nil || *raw.Category == "" {
		return item, &ValidationError{Index: i, Field: "category", Reason: "missing or empty"}
	}
	item.ItemID = *raw.ItemID
	item.SequenceNumber = *raw.SequenceNumber
	item.Category = *raw.Category

	quizShape := raw.Question != nil || raw.Choices != nil || raw.Answer != nil
	ratingShape := raw.History != nil || raw.Responses != nil
	switch {
	case quizShape && ratingShape:
		return item, &ValidationError{Index: i,
			Reason: "mixes quiz and response-set fields"}
	case quizShape:
		return buildQuizItem(i, raw, item)
	case ratingShape:
		return buildResponseSetItem(i, raw, item)
	default:
		return item, &ValidationError{Index: i,
			Reason: "has neither quiz nor response-set fields"}
	}
}

func buildQuizItem(i int, raw rawItem, item model.Item) (model.Item, error) {
	if raw.Question == nil || *raw.Question == "" {
		return item, &ValidationError{Index: i, Field: "question", Reason: "missing or empty"}
	}
	if raw.Choices == nil {
		return item, &ValidationError{Index: i, Field: "choices", Reason: "missing"}
	}
	if len(*raw.Choices) == 0 {
		return item, &ValidationError{Index: i, Field: "choices", Reason: "must be a non-empty list"}
	}
	if raw.Answer == nil {
		return item, &ValidationError{Index: i, Field: "answer", Reason: "missing"}
	}
	if *raw.Answer < 0 || *raw.Answer >= int64(len(*raw.Choices)) {
		return item, &ValidationError{Index: i, Field: "answer",
			Reason: fmt.Sprintf("index %d outside choices [0,%d)", *raw.Answer, len(*raw.Choices))}
	}

	item.Kind = model.KindQuiz
	item.Quiz = &model.QuizPayload{
		Question: *raw.Question,
		Choices:  *raw.Choices,
		Answer:   *raw.Answer,
	}
	return item, nil
}

func buildResponseSetItem(i int, raw rawItem, item model.Item) (model.Item, error) {
	if raw.History == nil {
		return item, &ValidationError{Index: i, Field: "history", Reason: "missing"}
	}
	turns := make([]model.Turn, 0, len(*raw.History))
	for j, t := range *raw.History {
		if t.Role == nil || *t.Role == "" {
			return item, &ValidationError{Index: i, Field: "history",
				Reason: fmt.Sprintf("turn %d: missing role", j)}
		}
		if t.Content == nil {
			return item, &ValidationError{Index: i, Field: "history",
				Reason: fmt.Sprintf("turn %d: missing content", j)}
		}
		turns = append(turns, model.Turn{Role: *t.Role, Content: *t.Content})
	}
	if raw.Responses == nil {
		return item, &ValidationError{Index: i, Field: "responses", Reason: "missing"}
	}
	if len(*raw.Responses) == 0 {
		return item, &ValidationError{Index: i, Field: "responses", Reason: "must be a non-empty list"}
	}
	for j, r := range *raw.Responses {
		if r.Model == "" {
			return item, &ValidationError{Index: i, Field: "responses",
				Reason: fmt.Sprintf("response %d: missing model", j)}
		}
	}

	item.Kind = model.KindResponseSet
	item.ResponseSet = &model.ResponseSetPayload{
		History:   turns,
		Responses: *raw.Responses,
	}
	return item, nil
}
