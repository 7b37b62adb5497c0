package store

import (
	"github.com/dykim/evalboard/internal/model"
)

// StatsByModel returns mean rating and count grouped by candidate model.
// Only rating rows enter the means (quiz selections carry no rating); a
// model with zero ratings does not appear at all.
func (s *Store) StatsByModel() ([]model.ModelStat, error) {
	rows, err := s.db.Query(
		`SELECT model_name, AVG(value), COUNT(*)
		 FROM responses WHERE model_name != ''
		 GROUP BY model_name ORDER BY model_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stats []model.ModelStat
	for rows.Next() {
		var st model.ModelStat
		if err := rows.Scan(&st.ModelName, &st.MeanRating, &st.Count); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// StatsByCategory returns mean rating and count grouped by item category.
func (s *Store) StatsByCategory() ([]model.CategoryStat, error) {
	rows, err := s.db.Query(
		`SELECT i.category, AVG(r.value), COUNT(*)
		 FROM responses r JOIN items i ON r.item_id = i.item_id
		 WHERE r.model_name != ''
		 GROUP BY i.category ORDER BY i.category`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stats []model.CategoryStat
	for rows.Next() {
		var st model.CategoryStat
		if err := rows.Scan(&st.Category, &st.MeanRating, &st.Count); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// StatsByModelCategory returns the two-way grouping; only (category, model)
// pairs with at least one rating are realized.
func (s *Store) StatsByModelCategory() ([]model.ModelCategoryStat, error) {
	rows, err := s.db.Query(
		`SELECT i.category, r.model_name, AVG(r.value), COUNT(*)
		 FROM responses r JOIN items i ON r.item_id = i.item_id
		 WHERE r.model_name != ''
		 GROUP BY i.category, r.model_name ORDER BY i.category, r.model_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stats []model.ModelCategoryStat
	for rows.Next() {
		var st model.ModelCategoryStat
		if err := rows.Scan(&st.Category, &st.ModelName, &st.MeanRating, &st.Count); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// ItemAccuracy reports, for every quiz item, how many users answered and
// how many picked the correct choice. AccuracyPercent stays nil for items
// nobody has answered; it is never a computed zero.
func (s *Store) ItemAccuracy() ([]model.ItemAccuracy, error) {
	items, err := s.ListItems()
	if err != nil {
		return nil, err
	}

	var result []model.ItemAccuracy
	for _, it := range items {
		if it.Kind != model.KindQuiz {
			continue
		}
		acc := model.ItemAccuracy{ItemID: it.ItemID, SequenceNumber: it.SequenceNumber}
		err := s.db.QueryRow(
			`SELECT COUNT(*), COUNT(CASE WHEN value = ? THEN 1 END)
			 FROM responses WHERE item_id = ? AND model_name = ''`,
			it.Quiz.Answer, it.ItemID,
		).Scan(&acc.Answered, &acc.Correct)
		if err != nil {
			return nil, err
		}
		if acc.Answered > 0 {
			pct := float64(acc.Correct) / float64(acc.Answered) * 100
			acc.AccuracyPercent = &pct
		}
		result = append(result, acc)
	}
	return result, nil
}

// ResultMatrix builds the flat admin view. Every (regular user, quiz item)
// pair is enumerated so unanswered cells show up as nil values; rating rows
// appear once per recorded rating.
func (s *Store) ResultMatrix() ([]model.ResultRow, error) {
	users, err := s.ListUsersByRole(model.RoleUser)
	if err != nil {
		return nil, err
	}
	items, err := s.ListItems()
	if err != nil {
		return nil, err
	}
	details, err := s.AllResponses()
	if err != nil {
		return nil, err
	}

	type key struct {
		userID int64
		itemID int64
		mdl    string
	}
	byKey := make(map[key]model.ResponseDetail, len(details))
	for _, d := range details {
		byKey[key{d.UserID, d.Response.ItemID, d.ModelName}] = d
	}

	var result []model.ResultRow
	for _, u := range users {
		for _, it := range items {
			switch it.Kind {
			case model.KindQuiz:
				row := model.ResultRow{
					Username:       u.Username,
					ItemID:         it.ItemID,
					SequenceNumber: it.SequenceNumber,
					Category:       it.Category,
				}
				answer := it.Quiz.Answer
				row.Answer = &answer
				if d, ok := byKey[key{u.ID, it.ItemID, ""}]; ok {
					v := d.Value
					correct := v == answer
					at := d.RecordedAt
					row.Value = &v
					row.Correct = &correct
					row.RecordedAt = &at
				}
				result = append(result, row)
			case model.KindResponseSet:
				for _, m := range it.ResponseSet.Models() {
					d, ok := byKey[key{u.ID, it.ItemID, m}]
					if !ok {
						continue
					}
					v := d.Value
					at := d.RecordedAt
					result = append(result, model.ResultRow{
						Username:       u.Username,
						ItemID:         it.ItemID,
						SequenceNumber: it.SequenceNumber,
						Category:       it.Category,
						ModelName:      m,
						Value:          &v,
						RecordedAt:     &at,
					})
				}
			}
		}
	}
	return result, nil
}
