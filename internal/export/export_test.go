package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dykim/evalboard/internal/model"
)

func sampleRows() []model.ExportRow {
	answer := int64(1)
	correct := true
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	return []model.ExportRow{
		{
			ItemID:     101,
			Category:   "역사",
			ItemText:   "세종대왕이 창제한 문자는?",
			UserID:     2,
			Username:   "평가자1",
			Value:      1,
			Answer:     &answer,
			Correct:    &correct,
			RecordedAt: at,
		},
		{
			ItemID:     201,
			Category:   "chat",
			UserID:     3,
			Username:   "rater",
			ModelName:  "model-a",
			Value:      4,
			RecordedAt: at.Add(time.Minute),
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRows()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := buf.Bytes()

	if !bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("expected UTF-8 BOM prefix")
	}

	body := string(bytes.TrimPrefix(out, []byte{0xEF, 0xBB, 0xBF}))
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "item_id,category,item_text,user_id,username,model,value,answer,correct,timestamp" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "세종대왕이 창제한 문자는?") {
		t.Errorf("non-ASCII item text not preserved: %q", lines[1])
	}
	if !strings.Contains(lines[1], ",true,") {
		t.Errorf("expected correctness flag in quiz row: %q", lines[1])
	}
	// Rating row leaves answer and correct empty.
	if !strings.Contains(lines[2], "model-a,4,,,") {
		t.Errorf("expected empty answer/correct in rating row: %q", lines[2])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	body := bytes.TrimPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF})
	if lines := strings.Split(strings.TrimSpace(string(body)), "\n"); len(lines) != 1 {
		t.Errorf("expected header only, got %d lines", len(lines))
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleRows()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	// Non-ASCII must pass through verbatim, not as \u escapes.
	if !strings.Contains(buf.String(), "세종대왕이 창제한 문자는?") {
		t.Error("expected verbatim non-ASCII content in JSON output")
	}

	var decoded []model.ExportRow
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(decoded))
	}
	if decoded[0].Correct == nil || !*decoded[0].Correct {
		t.Error("expected correct=true on quiz row")
	}
	if decoded[1].Answer != nil {
		t.Error("expected no answer key on rating row")
	}
}

func TestWriteJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("expected empty array, got %q", got)
	}
}
