package store

import (
	"fmt"
	"sort"

	"github.com/dykim/evalboard/internal/model"
)

// ExportRows builds the raw result rows consumed by the CSV and JSON
// exporters: every recorded judgment joined with its item and user, oldest
// first. Quiz rows carry the answer key and a correctness flag; rating
// rows carry the rated model instead.
func (s *Store) ExportRows() ([]model.ExportRow, error) {
	items, err := s.ListItems()
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	byID := make(map[int64]model.Item, len(items))
	for _, it := range items {
		byID[it.ItemID] = it
	}

	details, err := s.AllResponses()
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}

	rows := make([]model.ExportRow, 0, len(details))
	for _, d := range details {
		it, ok := byID[d.Response.ItemID]
		if !ok {
			// Ledger rows always reference live items; replacement wipes both.
			continue
		}
		row := model.ExportRow{
			ItemID:     d.Response.ItemID,
			Category:   d.Category,
			UserID:     d.UserID,
			Username:   d.Username,
			ModelName:  d.ModelName,
			Value:      d.Value,
			RecordedAt: d.RecordedAt,
		}
		if it.Kind == model.KindQuiz {
			answer := it.Quiz.Answer
			correct := d.Value == answer
			row.ItemText = it.Quiz.Question
			row.Answer = &answer
			row.Correct = &correct
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].RecordedAt.Before(rows[j].RecordedAt)
	})
	return rows, nil
}
