package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"chorebot/pkg/logx"
)

//go:embed migrations.sql
var migrations string

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger

	dedupWrites atomic.Uint64
	pruneEvery  uint64
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage: path is required for the sqlite driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	// One writer keeps SQLite away from SQLITE_BUSY under our own load.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.ExecContext(context.Background(), migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}
	return &sqliteStore{db: db, log: log, pruneEvery: 200}, nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Load(ctx context.Context) (State, error) {
	var st State
	var err error
	if st.Rooms, err = s.loadRooms(ctx); err != nil {
		return State{}, err
	}
	if st.Users, err = s.loadUsers(ctx); err != nil {
		return State{}, err
	}
	if st.Chores, err = s.loadChores(ctx); err != nil {
		return State{}, err
	}
	if st.History, err = s.loadHistory(ctx); err != nil {
		return State{}, err
	}
	return st, nil
}

func (s *sqliteStore) loadRooms(ctx context.Context) ([]Room, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, COALESCE(icon, ''), is_custom FROM rooms ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("storage: load rooms: %w", err)
	}
	defer rows.Close()
	var out []Room
	for rows.Next() {
		var r Room
		if err := rows.Scan(&r.ID, &r.Name, &r.Icon, &r.IsCustom); err != nil {
			return nil, fmt.Errorf("storage: scan room: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) loadUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, COALESCE(avatar, ''), is_custom FROM users ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("storage: load users: %w", err)
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Avatar, &u.IsCustom); err != nil {
			return nil, fmt.Errorf("storage: scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *sqliteStore) loadChores(ctx context.Context) ([]Chore, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, room_id, COALESCE(assigned_to, ''), next_due, COALESCE(last_completed, ''),
		       COALESCE(last_completed_by, ''), created_at, is_completed, recurrence
		FROM chores ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("storage: load chores: %w", err)
	}
	defer rows.Close()

	var out []Chore
	for rows.Next() {
		var (
			c                       Chore
			nextDue, lastDone, made string
			rec                     string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.RoomID, &c.AssignedTo, &nextDue, &lastDone,
			&c.LastCompletedBy, &made, &c.IsCompleted, &rec); err != nil {
			return nil, fmt.Errorf("storage: scan chore: %w", err)
		}
		if err := c.NextDue.UnmarshalText([]byte(nextDue)); err != nil {
			return nil, fmt.Errorf("storage: chore %s: %w", c.ID, err)
		}
		if err := c.LastCompleted.UnmarshalText([]byte(lastDone)); err != nil {
			return nil, fmt.Errorf("storage: chore %s: %w", c.ID, err)
		}
		if c.CreatedAt, err = time.Parse(time.RFC3339Nano, made); err != nil {
			return nil, fmt.Errorf("storage: chore %s created_at: %w", c.ID, err)
		}
		if err := json.Unmarshal([]byte(rec), &c.Config); err != nil {
			return nil, fmt.Errorf("storage: chore %s recurrence: %w", c.ID, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqliteStore) loadHistory(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chore_id, chore_name, completed_at, COALESCE(completed_by, ''), COALESCE(completed_by_name, '')
		FROM history ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("storage: load history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var (
			h  HistoryEntry
			at string
		)
		if err := rows.Scan(&h.ID, &h.ChoreID, &h.ChoreName, &at, &h.CompletedBy, &h.CompletedByName); err != nil {
			return nil, fmt.Errorf("storage: scan history: %w", err)
		}
		if h.CompletedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("storage: history %s: %w", h.ID, err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Save rewrites every household table inside one transaction.
func (s *sqliteStore) Save(ctx context.Context, st State) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"rooms", "users", "chores", "history"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("storage: clear %s: %w", table, err)
		}
	}

	for i, r := range st.Rooms {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO rooms(id, position, name, icon, is_custom) VALUES(?,?,?,?,?)`,
			r.ID, i, r.Name, nullStr(r.Icon), r.IsCustom); err != nil {
			return fmt.Errorf("storage: save room %s: %w", r.ID, err)
		}
	}
	for i, u := range st.Users {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO users(id, position, name, avatar, is_custom) VALUES(?,?,?,?,?)`,
			u.ID, i, u.Name, nullStr(u.Avatar), u.IsCustom); err != nil {
			return fmt.Errorf("storage: save user %s: %w", u.ID, err)
		}
	}
	for i, c := range st.Chores {
		rec, merr := json.Marshal(c.Config)
		if merr != nil {
			err = merr
			return fmt.Errorf("storage: encode chore %s: %w", c.ID, err)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO chores(id, position, name, room_id, assigned_to, next_due, last_completed,
			                    last_completed_by, created_at, is_completed, recurrence)
			 VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
			c.ID, i, c.Name, c.RoomID, nullStr(c.AssignedTo), c.NextDue.String(), nullStr(c.LastCompleted.String()),
			nullStr(c.LastCompletedBy), c.CreatedAt.Format(time.RFC3339Nano), c.IsCompleted, string(rec)); err != nil {
			return fmt.Errorf("storage: save chore %s: %w", c.ID, err)
		}
	}
	for _, h := range st.History {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO history(id, chore_id, chore_name, completed_at, completed_by, completed_by_name)
			 VALUES(?,?,?,?,?,?)`,
			h.ID, h.ChoreID, h.ChoreName, h.CompletedAt.Format(time.RFC3339Nano),
			nullStr(h.CompletedBy), nullStr(h.CompletedByName)); err != nil {
			return fmt.Errorf("storage: save history %s: %w", h.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

func (s *sqliteStore) PutDedup(ctx context.Context, key string, until time.Time) error {
	if key == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dedup(key, until) VALUES(?,?)
		 ON CONFLICT(key) DO UPDATE SET until = excluded.until`,
		key, until.UnixMilli())
	if err == nil && s.dedupWrites.Add(1)%s.pruneEvery == 0 {
		pctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		if perr := s.pruneDedup(pctx); perr != nil {
			s.log.Debug("dedup prune failed", logx.Err(perr))
		}
		cancel()
	}
	return err
}

func (s *sqliteStore) GetDedup(ctx context.Context, key string) (time.Time, bool, error) {
	if key == "" {
		return time.Time{}, false, nil
	}
	var ms int64
	err := s.db.QueryRowContext(ctx, `SELECT until FROM dedup WHERE key = ?`, key).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(ms), true, nil
}

func (s *sqliteStore) pruneDedup(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM dedup WHERE until < ?`, time.Now().UnixMilli())
	return err
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
