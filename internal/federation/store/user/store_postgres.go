package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"dingauth/internal/federation/models"
	"dingauth/internal/federation/service"
)

// ErrConflict is returned when a username or DingTalk identifier is already
// linked to another account.
var ErrConflict = errors.New("user already linked")

const selectColumns = `
	id, dingtalk_userid, dingtalk_unionid, username, password_hash, alias,
	roles, authorities, disabled, locked, expires_at, credentials_expire_at, created_at`

// PostgresStore reads linked accounts from the dingtalk_users table.
type PostgresStore struct {
	db    *sql.DB
	types *pgtype.Map
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, types: pgtype.NewMap()}
}

// Save upserts user by id.
func (s *PostgresStore) Save(ctx context.Context, user *models.LocalUser) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	if user.DingTalkUserID == "" && user.UnionID == "" {
		return fmt.Errorf("user %q has no dingtalk identifier", user.Name)
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dingtalk_users (`+selectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			dingtalk_userid = EXCLUDED.dingtalk_userid,
			dingtalk_unionid = EXCLUDED.dingtalk_unionid,
			username = EXCLUDED.username,
			password_hash = EXCLUDED.password_hash,
			alias = EXCLUDED.alias,
			roles = EXCLUDED.roles,
			authorities = EXCLUDED.authorities,
			disabled = EXCLUDED.disabled,
			locked = EXCLUDED.locked,
			expires_at = EXCLUDED.expires_at,
			credentials_expire_at = EXCLUDED.credentials_expire_at`,
		user.ID,
		nullString(user.DingTalkUserID),
		nullString(user.UnionID),
		user.Name,
		user.PasswordHash,
		user.DisplayAlias,
		nonNil(user.RoleNames),
		nonNil(user.Grants),
		user.Disabled,
		user.Locked,
		user.ExpiresAt,
		user.CredentialsExpireAt,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("save user %q: %w", user.Name, ErrConflict)
		}
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByUserID(ctx context.Context, userID string) (*models.LocalUser, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM dingtalk_users WHERE dingtalk_userid = $1`, userID)
	u, err := s.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", service.ErrUserNotFound)
		}
		return nil, fmt.Errorf("find user by userid: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) FindByUnionID(ctx context.Context, unionID string) (*models.LocalUser, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM dingtalk_users WHERE dingtalk_unionid = $1`, unionID)
	u, err := s.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", service.ErrUserNotFound)
		}
		return nil, fmt.Errorf("find user by unionid: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) LoadUser(ctx context.Context, identity *models.ResolvedIdentity) (models.UserDetails, error) {
	return loadUser(ctx, s, identity)
}

func (s *PostgresStore) scan(row *sql.Row) (*models.LocalUser, error) {
	var (
		u                 models.LocalUser
		userID, unionID   sql.NullString
		expires, credsExp sql.NullTime
	)
	err := row.Scan(
		&u.ID,
		&userID,
		&unionID,
		&u.Name,
		&u.PasswordHash,
		&u.DisplayAlias,
		s.types.SQLScanner(&u.RoleNames),
		s.types.SQLScanner(&u.Grants),
		&u.Disabled,
		&u.Locked,
		&expires,
		&credsExp,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.DingTalkUserID = userID.String
	u.UnionID = unionID.String
	if expires.Valid {
		u.ExpiresAt = &expires.Time
	}
	if credsExp.Valid {
		u.CredentialsExpireAt = &credsExp.Time
	}
	return &u, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ service.UserDetailsService = (*PostgresStore)(nil)
