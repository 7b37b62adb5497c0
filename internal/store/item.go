package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dykim/evalboard/internal/model"
)

func marshalPayload(it model.Item) (string, error) {
	var (
		data []byte
		err  error
	)
	switch it.Kind {
	case model.KindQuiz:
		if it.Quiz == nil {
			return "", fmt.Errorf("item %d: quiz payload missing", it.ItemID)
		}
		data, err = json.Marshal(it.Quiz)
	case model.KindResponseSet:
		if it.ResponseSet == nil {
			return "", fmt.Errorf("item %d: response-set payload missing", it.ItemID)
		}
		data, err = json.Marshal(it.ResponseSet)
	default:
		return "", fmt.Errorf("item %d: unknown kind %q", it.ItemID, it.Kind)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalPayload(it *model.Item, payload string) error {
	switch it.Kind {
	case model.KindQuiz:
		it.Quiz = &model.QuizPayload{}
		return json.Unmarshal([]byte(payload), it.Quiz)
	case model.KindResponseSet:
		it.ResponseSet = &model.ResponseSetPayload{}
		return json.Unmarshal([]byte(payload), it.ResponseSet)
	default:
		return fmt.Errorf("item %d: unknown kind %q", it.ItemID, it.Kind)
	}
}

// ReplaceItems wipes the item store and the full response ledger and
// inserts the given set, all in one transaction. A failure mid-load leaves
// the prior contents intact.
func (s *Store) ReplaceItems(items []model.Item) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM responses`); err != nil {
		return fmt.Errorf("clear responses: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}

	for _, it := range items {
		payload, err := marshalPayload(it)
		if err != nil {
			return err
		}
		_, err = tx.Exec(
			`INSERT INTO items (item_id, sequence_number, category, kind, payload) VALUES (?, ?, ?, ?, ?)`,
			it.ItemID, it.SequenceNumber, it.Category, it.Kind, payload,
		)
		if err != nil {
			return fmt.Errorf("insert item %d: %w", it.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("replaced item set", "count", len(items))
	return nil
}

// GetItem returns the item with the given external ID, or nil if not found.
func (s *Store) GetItem(itemID int64) (*model.Item, error) {
	var (
		it      model.Item
		payload string
	)
	err := s.db.QueryRow(
		`SELECT id, item_id, sequence_number, category, kind, payload FROM items WHERE item_id = ?`, itemID,
	).Scan(&it.ID, &it.ItemID, &it.SequenceNumber, &it.Category, &it.Kind, &payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := unmarshalPayload(&it, payload); err != nil {
		return nil, err
	}
	return &it, nil
}

// ListItems returns all items ordered by sequence number, then item ID.
func (s *Store) ListItems() ([]model.Item, error) {
	return s.queryItems(
		`SELECT id, item_id, sequence_number, category, kind, payload
		 FROM items ORDER BY sequence_number, item_id`,
	)
}

// ListItemsByCategory returns the items of one category in stable order.
func (s *Store) ListItemsByCategory(category string) ([]model.Item, error) {
	return s.queryItems(
		`SELECT id, item_id, sequence_number, category, kind, payload
		 FROM items WHERE category = ? ORDER BY sequence_number, item_id`, category,
	)
}

func (s *Store) queryItems(query string, args ...any) ([]model.Item, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.Item
	for rows.Next() {
		var (
			it      model.Item
			payload string
		)
		if err := rows.Scan(&it.ID, &it.ItemID, &it.SequenceNumber, &it.Category, &it.Kind, &payload); err != nil {
			return nil, err
		}
		if err := unmarshalPayload(&it, payload); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListCategories returns the distinct category names, sorted.
func (s *Store) ListCategories() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT category FROM items ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// SequenceNumbers returns the sequence numbers of all loaded items in
// ascending order.
func (s *Store) SequenceNumbers() ([]int64, error) {
	rows, err := s.db.Query(`SELECT sequence_number FROM items ORDER BY sequence_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seqs []int64
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		seqs = append(seqs, n)
	}
	return seqs, rows.Err()
}

// ItemCount returns the number of items in the store.
func (s *Store) ItemCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count)
	return count, err
}
