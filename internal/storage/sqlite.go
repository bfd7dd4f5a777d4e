package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"likesbot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

// Open initializes the sqlite-backed store, creating the database file and
// schema if needed.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("storage path is required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) AddUser(ctx context.Context, telegramID int64, username string) (bool, error) {
	var existing int64
	err := s.db.QueryRowContext(ctx,
		`SELECT telegram_id FROM users WHERE telegram_id = ?`, telegramID,
	).Scan(&existing)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users(telegram_id, username, registered_at) VALUES(?,?,?)`,
		telegramID, nullStr(username), time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *sqliteStore) AddPlayerID(ctx context.Context, telegramID int64, playerID string) error {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM player_ids WHERE telegram_id = ? AND player_id = ? AND active = 1`,
		telegramID, playerID,
	).Scan(&id)
	if err == nil {
		return ErrDuplicateID
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO player_ids(telegram_id, player_id, added_at) VALUES(?,?,?)`,
		telegramID, playerID, time.Now().Format(time.RFC3339),
	)
	return err
}

func (s *sqliteStore) ListPlayerIDs(ctx context.Context, telegramID int64) ([]PlayerID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player_id, player_name, added_at, last_sent_at, total_likes
		 FROM player_ids
		 WHERE telegram_id = ? AND active = 1
		 ORDER BY added_at DESC, id DESC`,
		telegramID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerID
	for rows.Next() {
		p := PlayerID{TelegramID: telegramID, Active: true}
		var name, addedAt, lastSent sql.NullString
		if err := rows.Scan(&p.ID, &p.PlayerID, &name, &addedAt, &lastSent, &p.TotalLikes); err != nil {
			return nil, err
		}
		p.PlayerName = name.String
		p.AddedAt = parseTime(addedAt.String)
		p.LastSentAt = parseTime(lastSent.String)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *sqliteStore) ActiveByUser(ctx context.Context) ([]UserGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT telegram_id, player_id FROM player_ids
		 WHERE active = 1
		 ORDER BY telegram_id, added_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserGroup
	for rows.Next() {
		var tid int64
		var pid string
		if err := rows.Scan(&tid, &pid); err != nil {
			return nil, err
		}
		if n := len(out); n > 0 && out[n-1].TelegramID == tid {
			out[n-1].PlayerIDs = append(out[n-1].PlayerIDs, pid)
			continue
		}
		out = append(out, UserGroup{TelegramID: tid, PlayerIDs: []string{pid}})
	}
	return out, rows.Err()
}

func (s *sqliteStore) Deactivate(ctx context.Context, telegramID int64, playerID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE player_ids SET active = 0 WHERE telegram_id = ? AND player_id = ?`,
		telegramID, playerID,
	)
	return err
}

func (s *sqliteStore) RecordSuccess(ctx context.Context, telegramID int64, playerID, playerName string, likesAdded int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE player_ids
		 SET player_name = ?, last_sent_at = ?, total_likes = total_likes + ?
		 WHERE telegram_id = ? AND player_id = ? AND active = 1`,
		nullStr(playerName), time.Now().Format(time.RFC3339), likesAdded, telegramID, playerID,
	)
	return err
}

func (s *sqliteStore) AppendSend(ctx context.Context, rec SendRecord) error {
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO send_history(telegram_id, player_id, likes_sent, success, error_message, player_name, at, auto)
		 VALUES(?,?,?,?,?,?,?,?)`,
		rec.TelegramID, rec.PlayerID, rec.LikesSent, rec.Success,
		nullStr(rec.ErrorMessage), nullStr(rec.PlayerName), rec.At.Format(time.RFC3339), rec.Auto,
	)
	return err
}

func (s *sqliteStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT telegram_id, username, registered_at FROM users WHERE active = 1 ORDER BY registered_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		var name, reg sql.NullString
		if err := rows.Scan(&u.TelegramID, &name, &reg); err != nil {
			return nil, err
		}
		u.Username = name.String
		u.RegisteredAt = parseTime(reg.String)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE active = 1`,
	).Scan(&st.Users); err != nil {
		return st, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM player_ids WHERE active = 1`,
	).Scan(&st.PlayerIDs); err != nil {
		return st, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(likes_sent), 0) FROM send_history WHERE success = 1`,
	).Scan(&st.TotalLikes); err != nil {
		return st, err
	}
	// Timestamps carry the writer's UTC offset; normalize both sides to the
	// local calendar day or boundary sends count toward the wrong date.
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM send_history WHERE date(at, 'localtime') = date('now', 'localtime')`,
	).Scan(&st.SendsToday); err != nil {
		return st, err
	}

	var successes, total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM send_history WHERE success = 1`,
	).Scan(&successes); err != nil {
		return st, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM send_history`,
	).Scan(&total); err != nil {
		return st, err
	}
	if total > 0 {
		st.SuccessRate = float64(successes) / float64(total) * 100
	}
	return st, nil
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
