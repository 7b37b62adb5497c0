package store

import (
	"github.com/dykim/evalboard/internal/model"
)

// ProgressForUser derives, per item in scope, what the user has recorded
// so far. category "" covers all items. Nothing is stored: the view is
// rebuilt from the ledger on every call, so it is always current.
func (s *Store) ProgressForUser(userID int64, category string) ([]model.ProgressEntry, error) {
	var (
		items []model.Item
		err   error
	)
	if category == "" {
		items, err = s.ListItems()
	} else {
		items, err = s.ListItemsByCategory(category)
	}
	if err != nil {
		return nil, err
	}

	responses, err := s.ListResponsesForUser(userID, category)
	if err != nil {
		return nil, err
	}
	recorded := make(map[int64]map[string]int64)
	for _, r := range responses {
		if recorded[r.ItemID] == nil {
			recorded[r.ItemID] = make(map[string]int64)
		}
		recorded[r.ItemID][r.ModelName] = r.Value
	}

	entries := make([]model.ProgressEntry, 0, len(items))
	for _, it := range items {
		entry := model.ProgressEntry{
			ItemID:         it.ItemID,
			SequenceNumber: it.SequenceNumber,
			Kind:           it.Kind,
		}
		byModel := recorded[it.ItemID]
		switch it.Kind {
		case model.KindQuiz:
			if v, ok := byModel[""]; ok {
				entry.Answered = true
				entry.SelectedChoice = &v
			}
		case model.KindResponseSet:
			entry.Models = it.ResponseSet.Models()
			if len(byModel) > 0 {
				entry.Answered = true
				entry.Ratings = byModel
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
