package pg

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/chatter-dev/chatter/internal/config"
	"github.com/chatter-dev/chatter/internal/logger"
)

type Storage struct {
	db  *sql.DB
	cfg *config.Config
}

func New(cfg *config.Config) (*Storage, error) {
	logger.Log.Info("connecting to db")
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("successfully connected to db")

	storage := &Storage{db, cfg}
	if err := storage.createTables(); err != nil {
		return nil, err
	}
	return storage, nil
}

func Connect(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Private.Pg.Host, cfg.Private.Pg.Port, cfg.Private.Pg.User, cfg.Private.Pg.Password, cfg.Private.Pg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// Ping backs the readiness probe.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) createTables() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS users (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		pass_hash  TEXT NOT NULL,
		image      TEXT NOT NULL DEFAULT '',
		created    TIMESTAMPTZ NOT NULL DEFAULT (NOW() AT TIME ZONE 'utc')
	);

	CREATE TABLE IF NOT EXISTS workspaces (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		owner_id   BIGINT NOT NULL REFERENCES users(id),
		join_code  TEXT NOT NULL,
		created    TIMESTAMPTZ NOT NULL DEFAULT (NOW() AT TIME ZONE 'utc')
	);

	CREATE TABLE IF NOT EXISTS members (
		id            BIGSERIAL PRIMARY KEY,
		workspace_id  BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		user_id       BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role          TEXT NOT NULL DEFAULT 'member',
		UNIQUE (workspace_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS channels (
		id            BIGSERIAL PRIMARY KEY,
		workspace_id  BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		name          TEXT NOT NULL,
		created       TIMESTAMPTZ NOT NULL DEFAULT (NOW() AT TIME ZONE 'utc')
	);
	CREATE INDEX IF NOT EXISTS channels_by_workspace ON channels (workspace_id);

	CREATE TABLE IF NOT EXISTS conversations (
		id             BIGSERIAL PRIMARY KEY,
		workspace_id   BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		member_one_id  BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		member_two_id  BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS messages (
		id                 BIGSERIAL PRIMARY KEY,
		workspace_id       BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		channel_id         BIGINT REFERENCES channels(id) ON DELETE CASCADE,
		conversation_id    BIGINT REFERENCES conversations(id) ON DELETE CASCADE,
		parent_message_id  BIGINT REFERENCES messages(id) ON DELETE CASCADE,
		member_id          BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		body               TEXT NOT NULL,
		image              TEXT NOT NULL DEFAULT '',
		created            TIMESTAMPTZ NOT NULL,
		updated            TIMESTAMPTZ,
		CHECK ((channel_id IS NULL) <> (conversation_id IS NULL))
	);
	CREATE INDEX IF NOT EXISTS messages_by_channel ON messages (channel_id, created DESC, id DESC) WHERE parent_message_id IS NULL;
	CREATE INDEX IF NOT EXISTS messages_by_conversation ON messages (conversation_id, created DESC, id DESC) WHERE parent_message_id IS NULL;
	CREATE INDEX IF NOT EXISTS messages_by_parent ON messages (parent_message_id, created DESC, id DESC);

	CREATE TABLE IF NOT EXISTS reactions (
		id            BIGSERIAL PRIMARY KEY,
		workspace_id  BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		message_id    BIGINT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		member_id     BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		value         TEXT NOT NULL,
		UNIQUE (message_id, member_id, value)
	);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}
