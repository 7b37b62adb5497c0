// Package export renders result rows as CSV or JSON downloads.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/dykim/evalboard/internal/model"
)

// utf8BOM is prepended to CSV output so spreadsheet tools detect the
// encoding of non-ASCII content.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{
	"item_id", "category", "item_text", "user_id", "username",
	"model", "value", "answer", "correct", "timestamp",
}

// WriteCSV writes rows as UTF-8 CSV with a byte-order marker. The answer
// and correct columns are empty for rating rows.
func WriteCSV(w io.Writer, rows []model.ExportRow) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		answer := ""
		if r.Answer != nil {
			answer = strconv.FormatInt(*r.Answer, 10)
		}
		correct := ""
		if r.Correct != nil {
			correct = strconv.FormatBool(*r.Correct)
		}
		rec := []string{
			strconv.FormatInt(r.ItemID, 10),
			r.Category,
			r.ItemText,
			strconv.FormatInt(r.UserID, 10),
			r.Username,
			r.ModelName,
			strconv.FormatInt(r.Value, 10),
			answer,
			correct,
			r.RecordedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes rows as a JSON array of objects. HTML escaping is off
// so non-ASCII content passes through verbatim.
func WriteJSON(w io.Writer, rows []model.ExportRow) error {
	if rows == nil {
		rows = []model.ExportRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
