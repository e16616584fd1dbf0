package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hpungsan/holocron/internal/errors"
)

// Partition names a table of key/value entries.
type Partition string

const (
	// PartitionPlanets holds planet records under auto-incrementing integer keys.
	PartitionPlanets Partition = "planets"
	// PartitionMetadata holds bookkeeping values under explicit string keys.
	PartitionMetadata Partition = "metadata"
)

// CursorKey is the metadata key holding the next-page cursor.
const CursorKey = "next"

// partitions maps each known partition to whether its keys auto-increment.
var partitions = map[Partition]bool{
	PartitionPlanets:  true,
	PartitionMetadata: false,
}

// Key constrains partition key types.
type Key interface {
	~int64 | ~string
}

// Entry is one stored value paired with its key.
type Entry[K Key] struct {
	Key   K
	Value json.RawMessage
}

func checkPartition(p Partition) error {
	if _, ok := partitions[p]; !ok {
		return errors.NewInvalidRequest(fmt.Sprintf("unknown partition: %q", p))
	}
	return nil
}

// ReadAll returns every entry of the partition in insertion order.
func ReadAll[K Key](ctx context.Context, s *Store, p Partition) ([]Entry[K], error) {
	if err := checkPartition(p); err != nil {
		return nil, err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewConnection(err)
	}
	defer tx.Rollback()

	// Partition names come from the fixed set above, never from callers.
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("SELECT key, value FROM %s ORDER BY rowid", p))
	if err != nil {
		if isMissingTable(err) {
			return nil, errors.NewConnection(fmt.Errorf("partition %q does not exist", p))
		}
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	entries := make([]Entry[K], 0)
	for rows.Next() {
		var (
			e     Entry[K]
			value string
		)
		if err := rows.Scan(&e.Key, &value); err != nil {
			return nil, errors.NewInternal(err)
		}
		e.Value = json.RawMessage(value)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return entries, nil
}

// InsertMany adds each value as a new entry and returns the assigned keys in
// input order. All inserts share one transaction: if any fails, none persist.
func InsertMany(ctx context.Context, s *Store, p Partition, values []json.RawMessage) ([]int64, error) {
	if err := checkPartition(p); err != nil {
		return nil, err
	}
	if !partitions[p] {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("partition %q requires explicit keys", p))
	}
	if len(values) == 0 {
		return []int64{}, nil
	}

	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewConnection(err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (value) VALUES (?)", p))
	if err != nil {
		return nil, errors.NewTransaction("insert "+string(p), err)
	}
	defer stmt.Close()

	keys := make([]int64, 0, len(values))
	for i, v := range values {
		res, err := stmt.ExecContext(ctx, string(v))
		if err != nil {
			return nil, errors.NewTransaction(fmt.Sprintf("insert %s[%d]", p, i), err)
		}
		key, err := res.LastInsertId()
		if err != nil {
			return nil, errors.NewTransaction(fmt.Sprintf("insert %s[%d]", p, i), err)
		}
		keys = append(keys, key)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewTransaction("commit "+string(p), err)
	}
	return keys, nil
}

// Put upserts value at key and returns once the write has committed.
func Put[K Key](ctx context.Context, s *Store, p Partition, key K, value json.RawMessage) error {
	if err := checkPartition(p); err != nil {
		return err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewConnection(err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(
		"INSERT INTO %s (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value", p)
	if _, err := tx.ExecContext(ctx, query, key, string(value)); err != nil {
		return errors.NewTransaction("put "+string(p), err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewTransaction("commit "+string(p), err)
	}
	return nil
}

// Get returns the value at key. The bool is false when no entry exists.
func Get[K Key](ctx context.Context, s *Store, p Partition, key K) (json.RawMessage, bool, error) {
	if err := checkPartition(p); err != nil {
		return nil, false, err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, false, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, errors.NewConnection(err)
	}
	defer tx.Rollback()

	var value string
	err = tx.QueryRowContext(ctx, fmt.Sprintf("SELECT value FROM %s WHERE key = ?", p), key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		if isMissingTable(err) {
			return nil, false, errors.NewConnection(fmt.Errorf("partition %q does not exist", p))
		}
		return nil, false, errors.NewInternal(err)
	}

	return json.RawMessage(value), true, nil
}

// isMissingTable checks if err is SQLite's "no such table" error.
func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
