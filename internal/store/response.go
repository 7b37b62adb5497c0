package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dykim/evalboard/internal/model"
)

const (
	minRating = 1
	maxRating = 5
)

// UpsertResponse records one judgment for (user, item, model). A repeated
// submission for the same key overwrites value and timestamp in place; the
// conflict-resolving insert keeps concurrent submissions from racing into
// two rows. The value is checked against the item's declared domain before
// anything is written.
func (s *Store) UpsertResponse(userID, itemID int64, modelName string, value int64) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("look up user %d: %w", userID, err)
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", userID, ErrUnknownUser)
	}

	item, err := s.GetItem(itemID)
	if err != nil {
		return fmt.Errorf("look up item %d: %w", itemID, err)
	}
	if item == nil {
		return fmt.Errorf("item %d: %w", itemID, ErrUnknownItem)
	}

	if err := validateValue(item, modelName, value); err != nil {
		return err
	}

	_, err = s.db.Exec(
		`INSERT INTO responses (user_id, item_id, model_name, value, recorded_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, item_id, model_name)
		 DO UPDATE SET value = excluded.value, recorded_at = excluded.recorded_at`,
		userID, itemID, modelName, value, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert response: %w", err)
	}
	slog.Debug("recorded response", "user", userID, "item", itemID, "model", modelName, "value", value)
	return nil
}

func validateValue(item *model.Item, modelName string, value int64) error {
	switch item.Kind {
	case model.KindQuiz:
		if modelName != "" {
			return fmt.Errorf("item %d takes no model name: %w", item.ItemID, ErrInvalidValue)
		}
		if value < 0 || value >= int64(len(item.Quiz.Choices)) {
			return fmt.Errorf("choice %d outside [0,%d) for item %d: %w",
				value, len(item.Quiz.Choices), item.ItemID, ErrInvalidValue)
		}
	case model.KindResponseSet:
		if value < minRating || value > maxRating {
			return fmt.Errorf("rating %d outside [%d,%d]: %w", value, minRating, maxRating, ErrInvalidValue)
		}
		found := false
		for _, r := range item.ResponseSet.Responses {
			if r.Model == modelName {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("model %q not a candidate of item %d: %w", modelName, item.ItemID, ErrInvalidValue)
		}
	}
	return nil
}

// GetResponse returns the recorded judgment for the key, or nil if the
// user has not judged it yet. modelName is "" for quiz items.
func (s *Store) GetResponse(userID, itemID int64, modelName string) (*model.Response, error) {
	var r model.Response
	err := s.db.QueryRow(
		`SELECT id, user_id, item_id, model_name, value, recorded_at
		 FROM responses WHERE user_id = ? AND item_id = ? AND model_name = ?`,
		userID, itemID, modelName,
	).Scan(&r.ID, &r.UserID, &r.ItemID, &r.ModelName, &r.Value, &r.RecordedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListResponsesForUser returns a user's responses, optionally restricted
// to items of one category ("" for all).
func (s *Store) ListResponsesForUser(userID int64, category string) ([]model.Response, error) {
	query := `SELECT r.id, r.user_id, r.item_id, r.model_name, r.value, r.recorded_at
	          FROM responses r JOIN items i ON r.item_id = i.item_id
	          WHERE r.user_id = ?`
	args := []any{userID}
	if category != "" {
		query += ` AND i.category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY i.sequence_number, r.model_name`
	return s.queryResponses(query, args...)
}

// ListResponsesForItem returns all responses recorded for one item.
func (s *Store) ListResponsesForItem(itemID int64) ([]model.Response, error) {
	return s.queryResponses(
		`SELECT id, user_id, item_id, model_name, value, recorded_at
		 FROM responses WHERE item_id = ? ORDER BY user_id, model_name`, itemID,
	)
}

func (s *Store) queryResponses(query string, args ...any) ([]model.Response, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var responses []model.Response
	for rows.Next() {
		var r model.Response
		if err := rows.Scan(&r.ID, &r.UserID, &r.ItemID, &r.ModelName, &r.Value, &r.RecordedAt); err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}

// AllResponses returns every ledger row joined with item and user
// metadata, newest first.
func (s *Store) AllResponses() ([]model.ResponseDetail, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.user_id, r.item_id, r.model_name, r.value, r.recorded_at, i.category, u.username
		 FROM responses r
		 JOIN items i ON r.item_id = i.item_id
		 JOIN users u ON r.user_id = u.id
		 ORDER BY r.recorded_at DESC, r.id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var details []model.ResponseDetail
	for rows.Next() {
		var d model.ResponseDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.ItemID, &d.ModelName, &d.Value, &d.RecordedAt,
			&d.Category, &d.Username); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// DeleteResponsesByItemIDs removes ledger rows referencing the given
// external item IDs. ReplaceItems already wipes the whole ledger; this is
// the finer-grained cleanup primitive for partial item removal.
func (s *Store) DeleteResponsesByItemIDs(itemIDs []int64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(itemIDs)), ",")
	args := make([]any, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}
	res, err := s.db.Exec(`DELETE FROM responses WHERE item_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.Info("deleted responses for removed items", "items", len(itemIDs), "rows", n)
	}
	return nil
}
