package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/internal/storage/migrations"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	_ "modernc.org/sqlite"
)

const migrationTable = "schema_migrations"

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// SQLiteStorage keeps sessions in a local SQLite file. List fields are stored as JSON columns.
type SQLiteStorage struct {
	sqlDB  *sql.DB
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

var _ SessionStore = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens the database at path and applies pending migrations.
// Sessions idle longer than ttl are treated as gone; zero disables expiry.
func NewSQLiteStorage(path string, ttl time.Duration, logger *slog.Logger) (*SQLiteStorage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// single writer keeps read-modify-write transactions serialized
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStorage{
		sqlDB:  sqlDB,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

const sessionColumns = `id, player_name, world_id, world_name, class_id, class_name, health, location,
	stats, skills, inventory, history, created_at, updated_at`

func (s *SQLiteStorage) Create(ctx context.Context, sess *state.Session) (*state.Session, error) {
	if sess == nil {
		return nil, errors.New("session cannot be nil")
	}

	created := *sess
	created.ID = uuid.New()
	now := s.now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	cols, err := encodeSessionColumns(&created)
	if err != nil {
		return nil, err
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID.String(), created.PlayerName, created.WorldID, created.WorldName,
		created.ClassID, created.Class, created.Health, created.Location,
		cols.stats, cols.skills, cols.inventory, cols.history,
		toMillis(created.CreatedAt), toMillis(created.UpdatedAt),
	)
	if err != nil {
		s.logger.Error("Failed to create session", "session_id", created.ID, "error", err)
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return &created, nil
}

func (s *SQLiteStorage) Load(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id.String())
	sess, err := s.scanSession(row)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("Failed to load session", "session_id", id, "error", err)
		}
		return nil, err
	}
	return sess, nil
}

func (s *SQLiteStorage) Save(ctx context.Context, id uuid.UUID, u state.Update) (*state.Session, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin save transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id.String())
	sess, err := s.scanSession(row)
	if err != nil {
		return nil, err
	}
	if err := sess.Apply(u); err != nil {
		return nil, err
	}

	cols, err := encodeSessionColumns(sess)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET health = ?, location = ?, stats = ?, skills = ?, inventory = ?, history = ?, updated_at = ?
		WHERE id = ?`,
		sess.Health, sess.Location, cols.stats, cols.skills, cols.inventory, cols.history,
		toMillis(sess.UpdatedAt), id.String(),
	); err != nil {
		s.logger.Error("Failed to save session", "session_id", id, "error", err)
		return nil, fmt.Errorf("update session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save transaction: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStorage) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeExpired removes sessions idle past the ttl and reports how many went.
func (s *SQLiteStorage) PurgeExpired(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := toMillis(s.now().Add(-s.ttl))
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStorage) scanSession(row *sql.Row) (*state.Session, error) {
	var (
		sess                                 state.Session
		id                                   string
		statsRaw, skillsRaw, invRaw, histRaw string
		createdAt, updatedAt                 int64
	)
	if err := row.Scan(
		&id,
		&sess.PlayerName,
		&sess.WorldID,
		&sess.WorldName,
		&sess.ClassID,
		&sess.Class,
		&sess.Health,
		&sess.Location,
		&statsRaw,
		&skillsRaw,
		&invRaw,
		&histRaw,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	if s.expired(fromMillis(updatedAt)) {
		return nil, ErrNotFound
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	sess.ID = parsed
	sess.CreatedAt = fromMillis(createdAt)
	sess.UpdatedAt = fromMillis(updatedAt)

	if err := decodeColumn(statsRaw, &sess.Stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	if err := decodeColumn(skillsRaw, &sess.Skills); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}
	if err := decodeColumn(invRaw, &sess.Inventory); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	if err := decodeColumn(histRaw, &sess.History); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if sess.History == nil {
		sess.History = make([]state.Event, 0)
	}
	return &sess, nil
}

type sessionColumnValues struct {
	stats, skills, inventory, history string
}

func encodeSessionColumns(sess *state.Session) (sessionColumnValues, error) {
	var (
		cols sessionColumnValues
		err  error
	)
	if cols.stats, err = encodeColumn(sess.Stats); err != nil {
		return cols, fmt.Errorf("encode stats: %w", err)
	}
	if cols.skills, err = encodeColumn(sess.Skills); err != nil {
		return cols, fmt.Errorf("encode skills: %w", err)
	}
	if cols.inventory, err = encodeColumn(sess.Inventory); err != nil {
		return cols, fmt.Errorf("encode inventory: %w", err)
	}
	if cols.history, err = encodeColumn(sess.History); err != nil {
		return cols, fmt.Errorf("encode history: %w", err)
	}
	return cols, nil
}

func encodeColumn[T any](values []T) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeColumn[T any](value string, dst *[]T) error {
	value = strings.TrimSpace(value)
	if value == "" || value == "[]" {
		*dst = nil
		return nil
	}
	return json.Unmarshal([]byte(value), dst)
}

func (s *SQLiteStorage) expired(updatedAt time.Time) bool {
	return s.ttl > 0 && s.now().Sub(updatedAt) > s.ttl
}

// applyMigrations runs each embedded .sql file once, in name order.
func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	createSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`, migrationTable)
	if _, err := sqlDB.Exec(createSQL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range sqlFiles {
		var found int
		err := sqlDB.QueryRow("SELECT 1 FROM "+migrationTable+" WHERE name = ?", file).Scan(&found)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration %s: %w", file, err)
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		upSQL := extractUpMigration(string(content))
		if strings.TrimSpace(upSQL) == "" {
			continue
		}

		tx, err := sqlDB.BeginTx(context.Background(), nil)
		if err != nil {
			return fmt.Errorf("begin migration transaction %s: %w", file, err)
		}
		if _, err := tx.Exec(upSQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO "+migrationTable+" (name, applied_at) VALUES (?, ?)",
			file, toMillis(time.Now()),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

func extractUpMigration(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"
	upIdx := strings.Index(content, up)
	if upIdx == -1 {
		return content
	}
	rest := content[upIdx+len(up):]
	if downIdx := strings.Index(rest, down); downIdx != -1 {
		return rest[:downIdx]
	}
	return rest
}
