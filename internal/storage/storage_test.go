package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) (*RecordRepo, *TimerRepo, func(fn func(tx *Tx) error) error) {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// Migrations are idempotent.
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("re-migrate: %v", err)
	}
	withTx := func(fn func(tx *Tx) error) error { return WithTx(ctx, db, fn) }
	return NewRecordRepo(db), NewTimerRepo(db), withTx
}

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestRecordJSONRoundTrip(t *testing.T) {
	records, _, _ := openTestDB(t)
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 9, 0, 0, 123, time.UTC)

	var got doc
	ok, err := records.LoadJSON(ctx, KeyStats, &got)
	if err != nil || ok {
		t.Fatalf("LoadJSON missing: ok=%v err=%v", ok, err)
	}

	if err := records.SaveJSON(ctx, KeyStats, doc{Name: "a", Count: 1}, at); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	if err := records.SaveJSON(ctx, KeyStats, doc{Name: "b", Count: 2}, at.Add(time.Minute)); err != nil {
		t.Fatalf("SaveJSON overwrite: %v", err)
	}

	ok, err = records.LoadJSON(ctx, KeyStats, &got)
	if err != nil || !ok {
		t.Fatalf("LoadJSON: ok=%v err=%v", ok, err)
	}
	if got != (doc{Name: "b", Count: 2}) {
		t.Fatalf("got %+v", got)
	}

	rec, err := records.Get(ctx, KeyStats)
	if err != nil || rec == nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Version != RecordVersion || !rec.UpdatedAt.Equal(at.Add(time.Minute)) {
		t.Fatalf("record=%+v", rec)
	}
	if want := `{"version":1,"data":{"name":"b","count":2}}`; string(rec.Payload) != want {
		t.Fatalf("payload=%s, want %s", rec.Payload, want)
	}
}

func TestLoadJSONRejectsBadRecords(t *testing.T) {
	records, _, _ := openTestDB(t)
	ctx := context.Background()
	now := time.Now()

	cases := []struct {
		name    string
		version int
		payload string
		want    error
	}{
		{"garbage", RecordVersion, "{oops", nil},
		{"future row version", 2, `{"version":1,"data":{}}`, ErrUnsupportedVersion},
		{"future envelope", RecordVersion, `{"version":3,"data":{}}`, ErrUnsupportedVersion},
		{"null data", RecordVersion, `{"version":1,"data":null}`, nil},
		{"wrong shape", RecordVersion, `{"version":1,"data":[1,2]}`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := records.Put(ctx, Record{Key: KeySessions, Version: tc.version, Payload: []byte(tc.payload), UpdatedAt: now}); err != nil {
				t.Fatalf("Put: %v", err)
			}
			var d doc
			ok, err := records.LoadJSON(ctx, KeySessions, &d)
			if err == nil || ok {
				t.Fatalf("expected error, got ok=%v", ok)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("err=%v, want %v", err, tc.want)
			}
		})
	}
}

func TestTimerSingleSlot(t *testing.T) {
	_, timers, _ := openTestDB(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	got, err := timers.Get(ctx)
	if err != nil || got != nil {
		t.Fatalf("Get empty: %+v %v", got, err)
	}

	first := ActiveTimer{ID: "a", Subject: "Math", StartedAt: start, Anchor: start}
	inserted, err := timers.Insert(ctx, first)
	if err != nil || !inserted {
		t.Fatalf("Insert: inserted=%v err=%v", inserted, err)
	}
	inserted, err = timers.Insert(ctx, ActiveTimer{ID: "b", Subject: "Art", StartedAt: start, Anchor: start})
	if err != nil || inserted {
		t.Fatalf("second Insert: inserted=%v err=%v", inserted, err)
	}

	paused := start.Add(10 * time.Minute)
	first.PausedAt = &paused
	if err := timers.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err = timers.Get(ctx)
	if err != nil || got == nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "a" || got.PausedAt == nil || !got.PausedAt.Equal(paused) || !got.Anchor.Equal(start) {
		t.Fatalf("timer=%+v", got)
	}

	if err := timers.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got, _ := timers.Get(ctx); got != nil {
		t.Fatalf("timer not cleared: %+v", got)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	records, timers, withTx := openTestDB(t)
	ctx := context.Background()
	now := time.Now()

	boom := errors.New("boom")
	err := withTx(func(tx *Tx) error {
		if err := tx.Records.SaveJSON(ctx, KeyStats, doc{Name: "tx"}, now); err != nil {
			return err
		}
		if _, err := tx.Timer.Insert(ctx, ActiveTimer{ID: "x", Subject: "s", StartedAt: now, Anchor: now}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want boom", err)
	}
	if rec, _ := records.Get(ctx, KeyStats); rec != nil {
		t.Fatalf("record survived rollback: %+v", rec)
	}
	if tm, _ := timers.Get(ctx); tm != nil {
		t.Fatalf("timer survived rollback: %+v", tm)
	}

	err = withTx(func(tx *Tx) error {
		return tx.Records.SaveJSON(ctx, KeyStats, doc{Name: "ok"}, now)
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	var d doc
	if ok, err := records.LoadJSON(ctx, KeyStats, &d); !ok || err != nil || d.Name != "ok" {
		t.Fatalf("committed doc=%+v ok=%v err=%v", d, ok, err)
	}
}
