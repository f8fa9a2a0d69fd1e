package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedVersion is returned when a record was written by an unknown schema version.
var ErrUnsupportedVersion = errors.New("unsupported record version")

type RecordRepo struct {
	db DBTX
}

func NewRecordRepo(db DBTX) *RecordRepo {
	return &RecordRepo{db: db}
}

// Get returns the record stored under key, or nil when absent.
func (r *RecordRepo) Get(ctx context.Context, key string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, version, payload, updated_at FROM records WHERE key = ?`, key)

	var (
		rec       Record
		payload   string
		updatedAt string
	)
	if err := row.Scan(&rec.Key, &rec.Version, &payload, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("record get %s: %w", key, err)
	}
	rec.Payload = []byte(payload)
	ts, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("record %s updated_at: %w", key, err)
	}
	rec.UpdatedAt = ts
	return &rec, nil
}

func (r *RecordRepo) Put(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO records (key, version, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			version = excluded.version,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, rec.Key, rec.Version, string(rec.Payload), formatTime(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("record put %s: %w", rec.Key, err)
	}
	return nil
}

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// LoadJSON decodes the record under key into v. It reports false (and leaves
// v alone) when the record does not exist.
func (r *RecordRepo) LoadJSON(ctx context.Context, key string, v any) (bool, error) {
	rec, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}

	var env envelope
	if err := json.Unmarshal(rec.Payload, &env); err != nil {
		return false, fmt.Errorf("decode %s envelope: %w", key, err)
	}
	if env.Version != RecordVersion || rec.Version != RecordVersion {
		return false, fmt.Errorf("%s: version %d: %w", key, env.Version, ErrUnsupportedVersion)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return false, fmt.Errorf("decode %s: empty data", key)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON stores v under key wrapped in a versioned envelope.
func (r *RecordRepo) SaveJSON(ctx context.Context, key string, v any, at time.Time) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	payload, err := json.Marshal(envelope{Version: RecordVersion, Data: data})
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", key, err)
	}
	return r.Put(ctx, Record{Key: key, Version: RecordVersion, Payload: payload, UpdatedAt: at})
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
