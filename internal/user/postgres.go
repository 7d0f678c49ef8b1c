package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/DELEBINITZ/user-auth-service/internal/db"
)

// ErrDuplicate reports a unique-constraint violation on username, email
// or github_id.
var ErrDuplicate = errors.New("user: duplicate username, email or github id")

const uniqueViolation = "23505"

type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `
	id, username, email, fullname, phone, bio, avatar_url,
	password_hash, github_id, refresh_token, is_public, is_admin,
	created_at, updated_at`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.Phone, &u.Bio,
		&u.AvatarURL, &u.PasswordHash, &u.GithubID, &u.RefreshToken,
		&u.IsPublic, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func mapDuplicate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (s *PostgresStore) ByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (s *PostgresStore) ByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(username) = LOWER($1)
		   OR (email IS NOT NULL AND LOWER(email) = LOWER($2))
	`, username, email)
	return scanUser(row)
}

func (s *PostgresStore) ByGithubID(ctx context.Context, githubID string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE github_id = $1
	`, githubID)
	return scanUser(row)
}

func (s *PostgresStore) Create(ctx context.Context, fields NewUserFields) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, fullname, avatar_url, password_hash, github_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns+`
	`,
		fields.Username,
		fields.Email,
		fields.FullName,
		fields.AvatarURL,
		fields.PasswordHash,
		fields.GithubID,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return u, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id string, fields UpdateFields) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET
			fullname = COALESCE($2, fullname),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			bio = COALESCE($5, bio),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id, fields.FullName, fields.Email, fields.Phone, fields.Bio)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return u, nil
}

func (s *PostgresStore) SetAvatarURL(ctx context.Context, id string, url *string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET avatar_url = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id, url)
	return scanUser(row)
}

func (s *PostgresStore) SetPasswordHash(ctx context.Context, id string, hash string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`, id, hash)
	return err
}

func (s *PostgresStore) SetVisibility(ctx context.Context, id string, isPublic bool) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET is_public = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id, isPublic)
	return scanUser(row)
}

func (s *PostgresStore) SetRefreshToken(ctx context.Context, id string, token *string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET refresh_token = $2, updated_at = NOW()
		WHERE id = $1
	`, id, token)
	return err
}

func (s *PostgresStore) RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) (bool, error) {
	// Guarding on the old value makes the rotation a compare-and-set on
	// the single slot, so two racing rotations of the same token cannot
	// both succeed.
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET refresh_token = $3, updated_at = NOW()
		WHERE id = $1 AND refresh_token = $2
	`, id, oldToken, newToken)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *PostgresStore) List(ctx context.Context, includePrivate bool) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE is_public OR $1
		ORDER BY created_at
	`, includePrivate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var u User
		err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.FullName, &u.Phone, &u.Bio,
			&u.AvatarURL, &u.PasswordHash, &u.GithubID, &u.RefreshToken,
			&u.IsPublic, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}
