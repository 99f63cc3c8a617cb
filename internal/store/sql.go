package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/ipquiz/internal/quiz"

	// pgx stdlib driver, registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLStore implements Repo and EventRepo on database/sql. The same SQL runs
// on SQLite and PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	seq     *sequenceCounter
}

var (
	_ Repo      = (*SQLStore)(nil)
	_ EventRepo = (*SQLStore)(nil)
)

const (
	settingPINHash        = "pin_hash"
	settingQuestionsSaved = "questions_saved"
	settingHintsSaved     = "hints_saved"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS questions (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		data TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS hints (
		topic TEXT PRIMARY KEY,
		body TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS session_events (
		sequence BIGINT PRIMARY KEY,
		created_at BIGINT NOT NULL,
		session_id TEXT NOT NULL,
		action TEXT NOT NULL,
		questions INTEGER NOT NULL,
		total INTEGER NOT NULL,
		possible INTEGER NOT NULL,
		duration_secs INTEGER NOT NULL,
		by_topic TEXT NOT NULL,
		by_level TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS session_events_action ON session_events (action, sequence)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		sequence BIGINT PRIMARY KEY,
		created_at BIGINT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		latency_ms BIGINT NOT NULL,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL,
		request_body TEXT NOT NULL,
		response_body TEXT NOT NULL
	)`,
}

// Open creates a SQLStore on the SQLite database at dsn.
// It applies recommended pragmas and creates the schema.
func Open(dsn string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection; one connection keeps them in force.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	return newSQLStore(context.Background(), db, DialectSQLite)
}

// OpenPostgres creates a SQLStore on a PostgreSQL server through pgx.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLStore(ctx, db, DialectPostgres)
}

func newSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLStore{db: db, dialect: dialect, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Dialect reports which database the store talks to.
func (s *SQLStore) Dialect() Dialect {
	return s.dialect
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (s *SQLStore) LoadQuestions(ctx context.Context) (quiz.Bank, error) {
	if ok, err := s.hasSetting(ctx, settingQuestionsSaved); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `SELECT data FROM questions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	bank := quiz.Bank{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q quiz.Question
		if err := json.Unmarshal([]byte(data), &q); err != nil {
			return nil, fmt.Errorf("decode question: %w", err)
		}
		bank = append(bank, q)
	}
	return bank, rows.Err()
}

func (s *SQLStore) SaveQuestions(ctx context.Context, bank quiz.Bank) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM questions`); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}
		for i, q := range bank {
			data, err := json.Marshal(q)
			if err != nil {
				return fmt.Errorf("encode question %s: %w", q.ID, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO questions (id, position, data) VALUES ($1, $2, $3)`,
				q.ID, i, string(data),
			); err != nil {
				return fmt.Errorf("insert question %s: %w", q.ID, err)
			}
		}
		return putSetting(ctx, tx, settingQuestionsSaved, "1")
	})
}

func (s *SQLStore) LoadHints(ctx context.Context) (quiz.HintMap, error) {
	if ok, err := s.hasSetting(ctx, settingHintsSaved); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `SELECT topic, body FROM hints`)
	if err != nil {
		return nil, fmt.Errorf("query hints: %w", err)
	}
	defer rows.Close()

	hints := quiz.HintMap{}
	for rows.Next() {
		var topic, body string
		if err := rows.Scan(&topic, &body); err != nil {
			return nil, fmt.Errorf("scan hint: %w", err)
		}
		hints[topic] = body
	}
	return hints, rows.Err()
}

func (s *SQLStore) SaveHints(ctx context.Context, hints quiz.HintMap) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM hints`); err != nil {
			return fmt.Errorf("clear hints: %w", err)
		}
		for topic, body := range hints {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO hints (topic, body) VALUES ($1, $2)`, topic, body,
			); err != nil {
				return fmt.Errorf("insert hint %q: %w", topic, err)
			}
		}
		return putSetting(ctx, tx, settingHintsSaved, "1")
	})
}

func (s *SQLStore) LoadPINHash(ctx context.Context) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = $1`, settingPINHash,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query pin hash: %w", err)
	}
	return hash, nil
}

func (s *SQLStore) SavePINHash(ctx context.Context, hash string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return putSetting(ctx, tx, settingPINHash, hash)
	})
}

func (s *SQLStore) hasSetting(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM settings WHERE key = $1`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query setting %s: %w", key, err)
	}
	return true, nil
}

func putSetting(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
