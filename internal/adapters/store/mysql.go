// Package store persists guild membership: which chat users verified as
// which team in which guild. Backed by MySQL; all reads and writes go
// through prepared statements with context deadlines.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
)

// Pool sizing for the verified-user database.
const (
	maxOpenConns    = 25
	maxIdleConns    = 25
	connMaxLifetime = 5 * time.Minute
)

// schema is applied on startup; the table is tiny and append-mostly.
const schema = `
CREATE TABLE IF NOT EXISTS verified_users (
    guild_id    VARCHAR(32)  NOT NULL,
    user_id     VARCHAR(32)  NOT NULL,
    user_tag    VARCHAR(64)  NOT NULL DEFAULT '',
    team_id     INT          NOT NULL,
    team_number VARCHAR(16)  NOT NULL,
    verified_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (guild_id, user_id)
)`

// MySQLStore is the verified-user store over a MySQL connection pool.
type MySQLStore struct {
	db     *sql.DB
	logger logger.Logger
}

// NewMySQL opens the pool, verifies connectivity, and ensures the schema.
func NewMySQL(ctx context.Context, dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &MySQLStore{db: db, logger: logger.Get().Named("store")}, nil
}

// Close releases the connection pool.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

// Upsert records or refreshes one user's verification. A user re-verifying
// under a new team replaces their previous binding in that guild.
func (s *MySQLStore) Upsert(ctx context.Context, u model.VerifiedUser) error {
	const q = `
		INSERT INTO verified_users (guild_id, user_id, user_tag, team_id, team_number)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			user_tag = VALUES(user_tag),
			team_id = VALUES(team_id),
			team_number = VALUES(team_number)`
	if _, err := s.db.ExecContext(ctx, q,
		u.GuildID, u.UserID, u.UserTag, u.TeamID, u.TeamNumber); err != nil {
		return fmt.Errorf("upsert verified user: %w", err)
	}
	return nil
}

// Delete removes one user's verification in a guild.
func (s *MySQLStore) Delete(ctx context.Context, guildID, userID string) error {
	const q = `DELETE FROM verified_users WHERE guild_id = ? AND user_id = ?`
	res, err := s.db.ExecContext(ctx, q, guildID, userID)
	if err != nil {
		return fmt.Errorf("delete verified user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// UserByID fetches one user's verification in a guild.
func (s *MySQLStore) UserByID(ctx context.Context, guildID, userID string) (model.VerifiedUser, error) {
	const q = `
		SELECT guild_id, user_id, user_tag, team_id, team_number
		FROM verified_users
		WHERE guild_id = ? AND user_id = ?`
	var u model.VerifiedUser
	err := s.db.QueryRowContext(ctx, q, guildID, userID).
		Scan(&u.GuildID, &u.UserID, &u.UserTag, &u.TeamID, &u.TeamNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return model.VerifiedUser{}, ErrNotFound
	}
	if err != nil {
		return model.VerifiedUser{}, fmt.Errorf("select verified user: %w", err)
	}
	return u, nil
}

// UsersByGuild lists every verified user in a guild.
func (s *MySQLStore) UsersByGuild(ctx context.Context, guildID string) ([]model.VerifiedUser, error) {
	const q = `
		SELECT guild_id, user_id, user_tag, team_id, team_number
		FROM verified_users
		WHERE guild_id = ?
		ORDER BY team_number, user_id`
	rows, err := s.db.QueryContext(ctx, q, guildID)
	if err != nil {
		return nil, fmt.Errorf("select guild users: %w", err)
	}
	defer rows.Close()

	var users []model.VerifiedUser
	for rows.Next() {
		var u model.VerifiedUser
		if err := rows.Scan(&u.GuildID, &u.UserID, &u.UserTag, &u.TeamID, &u.TeamNumber); err != nil {
			return nil, fmt.Errorf("scan guild user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guild users: %w", err)
	}
	return users, nil
}

// TeamsByGuild groups a guild's verified users under their teams, one
// group per distinct team, ordered by team number.
func (s *MySQLStore) TeamsByGuild(ctx context.Context, guildID string) ([]model.GuildTeam, error) {
	users, err := s.UsersByGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return GroupByTeam(users), nil
}

// GroupByTeam folds a flat user list into per-team groups ordered by
// team number.
func GroupByTeam(users []model.VerifiedUser) []model.GuildTeam {
	byTeam := make(map[int]*model.GuildTeam)
	for _, u := range users {
		g, ok := byTeam[u.TeamID]
		if !ok {
			g = &model.GuildTeam{TeamID: u.TeamID, TeamNumber: u.TeamNumber}
			byTeam[u.TeamID] = g
		}
		g.Users = append(g.Users, u)
	}
	out := make([]model.GuildTeam, 0, len(byTeam))
	for _, g := range byTeam {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamNumber != out[j].TeamNumber {
			return out[i].TeamNumber < out[j].TeamNumber
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out
}
