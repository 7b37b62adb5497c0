package dataset

import (
	"errors"
	"strings"
	"testing"

	"github.com/dykim/evalboard/internal/model"
)

func TestParseValidQuizItems(t *testing.T) {
	data := []byte(`[
		{"item_id": 1, "sequence_number": 1, "category": "history",
		 "question": "In what year did the war end?",
		 "choices": ["1943", "1945", "1950"], "answer": 1},
		{"item_id": 2, "sequence_number": 2, "category": "science",
		 "question": "What is H2O?",
		 "choices": ["Water", "Salt"], "answer": 0}
	]`)

	items, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Kind != model.KindQuiz {
		t.Errorf("item 0 kind = %q, want quiz", items[0].Kind)
	}
	if items[0].Quiz == nil || items[0].Quiz.Answer != 1 {
		t.Errorf("item 0 quiz payload not built: %+v", items[0].Quiz)
	}
	if items[0].ResponseSet != nil {
		t.Error("quiz item carries a response-set payload")
	}
	if items[1].Category != "science" {
		t.Errorf("item 1 category = %q", items[1].Category)
	}
}

func TestParseValidResponseSetItems(t *testing.T) {
	data := []byte(`[
		{"item_id": 10, "sequence_number": 1, "category": "summarization",
		 "history": [
			{"role": "user", "content": "다음 문서를 요약해 주세요."},
			{"role": "assistant", "content": "네, 요약하겠습니다."}
		 ],
		 "responses": [
			{"model": "model-a", "output": "짧은 요약입니다."},
			{"model": "model-b", "output": "다른 요약입니다."}
		 ]}
	]`)

	items, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	it := items[0]
	if it.Kind != model.KindResponseSet {
		t.Fatalf("kind = %q, want response_set", it.Kind)
	}
	if it.Quiz != nil {
		t.Error("response-set item carries a quiz payload")
	}
	if got := it.ResponseSet.Models(); len(got) != 2 || got[0] != "model-a" || got[1] != "model-b" {
		t.Errorf("models = %v", got)
	}
	if len(it.ResponseSet.History) != 2 || it.ResponseSet.History[0].Role != "user" {
		t.Errorf("history not preserved: %+v", it.ResponseSet.History)
	}
}

func TestParseMixedKinds(t *testing.T) {
	data := []byte(`[
		{"item_id": 1, "sequence_number": 1, "category": "quiz",
		 "question": "Q?", "choices": ["a", "b"], "answer": 0},
		{"item_id": 2, "sequence_number": 2, "category": "eval",
		 "history": [{"role": "user", "content": "hi"}],
		 "responses": [{"model": "m1", "output": "hello"}]}
	]`)
	items, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if items[0].Kind != model.KindQuiz || items[1].Kind != model.KindResponseSet {
		t.Errorf("kinds = %q, %q", items[0].Kind, items[1].Kind)
	}
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantIndex int
		wantField string
	}{
		{
			name:      "not an array",
			data:      `{"item_id": 1}`,
			wantIndex: -1,
		},
		{
			name:      "missing item_id",
			data:      `[{"sequence_number": 1, "category": "c", "question": "q", "choices": ["a"], "answer": 0}]`,
			wantIndex: 0,
			wantField: "item_id",
		},
		{
			name:      "missing category",
			data:      `[{"item_id": 1, "sequence_number": 1, "question": "q", "choices": ["a"], "answer": 0}]`,
			wantIndex: 0,
			wantField: "category",
		},
		{
			name:      "empty choices",
			data:      `[{"item_id": 1, "sequence_number": 1, "category": "c", "question": "q", "choices": [], "answer": 0}]`,
			wantIndex: 0,
			wantField: "choices",
		},
		{
			name:      "answer out of range",
			data:      `[{"item_id": 1, "sequence_number": 1, "category": "c", "question": "q", "choices": ["a", "b"], "answer": 2}]`,
			wantIndex: 0,
			wantField: "answer",
		},
		{
			name:      "negative answer",
			data:      `[{"item_id": 1, "sequence_number": 1, "category": "c", "question": "q", "choices": ["a", "b"], "answer": -1}]`,
			wantIndex: 0,
			wantField: "answer",
		},
		{
			name:      "missing answer",
			data:      `[{"item_id": 1, "sequence_number": 1, "category": "c", "question": "q", "choices": ["a"]}]`,
			wantIndex: 0,
			wantField: "answer",
		},
		{
			name:      "turn missing role",
			data:      `[{"item_id": 1, "sequence_number": 1, "category": "c", "history": [{"content": "hi"}], "responses": [{"model": "m", "output": "o"}]}]`,
			wantIndex: 0,
			wantField: "history",
		},
		{
			name:      "empty responses",
			data:      `[{"item_id": 1, "sequence_number": 1, "category": "c", "history": [], "responses": []}]`,
			wantIndex: 0,
			wantField: "responses",
		},
		{
			name:      "response missing model",
			data:      `[{"item_id": 1, "sequence_number": 1, "category": "c", "history": [], "responses": [{"output": "o"}]}]`,
			wantIndex: 0,
			wantField: "responses",
		},
		{
			name: "neither shape",
			data: `[{"item_id": 1, "sequence_number": 1, "category": "c"}]`,
		},
		{
			name: "mixed shapes in one entry",
			data: `[{"item_id": 1, "sequence_number": 1, "category": "c", "question": "q", "choices": ["a"], "answer": 0, "responses": [{"model": "m", "output": "o"}]}]`,
		},
		{
			name: "second entry invalid",
			data: `[
				{"item_id": 1, "sequence_number": 1, "category": "c", "question": "q", "choices": ["a"], "answer": 0},
				{"item_id": 2, "sequence_number": 2, "category": "c", "question": "", "choices": ["a"], "answer": 0}
			]`,
			wantIndex: 1,
			wantField: "question",
		},
		{
			name: "duplicate item_id",
			data: `[
				{"item_id": 7, "sequence_number": 1, "category": "c", "question": "q", "choices": ["a"], "answer": 0},
				{"item_id": 7, "sequence_number": 2, "category": "c", "question": "q2", "choices": ["a"], "answer": 0}
			]`,
			wantIndex: 1,
			wantField: "item_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if ve.Index != tt.wantIndex {
				t.Errorf("index = %d, want %d", ve.Index, tt.wantIndex)
			}
			if tt.wantField != "" && ve.Field != tt.wantField {
				t.Errorf("field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestValidationErrorNamesEntry(t *testing.T) {
	data := `[
		{"item_id": 1, "sequence_number": 1, "category": "c", "question": "q", "choices": ["a"], "answer": 0},
		{"item_id": 2, "sequence_number": 2, "category": "c", "question": "q", "choices": ["a", "b"], "answer": 5}
	]`
	_, err := Parse([]byte(data))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "item 1") {
		t.Errorf("error does not name the offending entry: %v", err)
	}
}

func TestParseEmptyArray(t *testing.T) {
	items, err := Parse([]byte(`[]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
}
