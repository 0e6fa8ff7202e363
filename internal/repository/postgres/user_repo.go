package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"regnify/internal/domain"
	"regnify/internal/port"
)

const userColumns = `id, username, email, password_hash, first_name, last_name,
	role, status, last_login, created_at, updated_at`

type userRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new PostgreSQL-backed UserRepository.
func NewUserRepo(db *sqlx.DB) port.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = uuid.New()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}

	_, err := r.db.NamedExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (:id, :username, :email, :password_hash, :first_name, :last_name,
			:role, :status, :last_login, :created_at, :updated_at)`, user)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err, "users_username_key"):
		return domain.ErrDuplicateUsername
	case isUniqueViolation(err, "users_email_key"):
		return domain.ErrDuplicateEmail
	}
	return fmt.Errorf("userRepo.Create: %w", err)
}

func (r *userRepo) getOne(ctx context.Context, op, where string, arg interface{}) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, "SELECT "+userColumns+" FROM users WHERE "+where, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.%s: %w", op, err)
	}
	return &user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getOne(ctx, "GetByID", "id = $1", id)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, "GetByUsername", "username = $1", username)
}

func (r *userRepo) List(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users"); err != nil {
		return nil, 0, fmt.Errorf("userRepo.List count: %w", err)
	}

	users := []domain.User{}
	err := r.db.SelectContext(ctx, &users,
		"SELECT "+userColumns+" FROM users ORDER BY username LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("userRepo.List: %w", err)
	}
	return users, total, nil
}

// exec runs a single-row update and reports ErrNotFound when no row matched.
func (r *userRepo) exec(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("userRepo.%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("userRepo.%s rows affected: %w", op, err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Update writes the editable profile columns. Taken usernames and emails are
// reported as ErrDuplicateUsername and ErrDuplicateEmail.
func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	err := r.exec(ctx, "Update",
		`UPDATE users SET username = $1, email = $2, password_hash = $3, first_name = $4,
			last_name = $5, role = $6, status = $7, updated_at = $8
		 WHERE id = $9`,
		user.Username, user.Email, user.PasswordHash, user.FirstName,
		user.LastName, user.Role, user.Status, user.UpdatedAt, user.ID)
	switch {
	case isUniqueViolation(err, "users_username_key"):
		return domain.ErrDuplicateUsername
	case isUniqueViolation(err, "users_email_key"):
		return domain.ErrDuplicateEmail
	}
	return err
}

// Search matches query against username, email and names, case-insensitively.
func (r *userRepo) Search(ctx context.Context, query string, limit int) ([]domain.User, error) {
	users := []domain.User{}
	err := r.db.SelectContext(ctx, &users,
		"SELECT "+userColumns+` FROM users
		 WHERE username ILIKE $1 OR email ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1
		 ORDER BY username LIMIT $2`, containsPattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("userRepo.Search: %w", err)
	}
	return users, nil
}

func (r *userRepo) ListByStatus(ctx context.Context, status domain.UserStatus, limit int) ([]domain.User, error) {
	users := []domain.User{}
	err := r.db.SelectContext(ctx, &users,
		"SELECT "+userColumns+" FROM users WHERE status = $1 ORDER BY username LIMIT $2", status, limit)
	if err != nil {
		return nil, fmt.Errorf("userRepo.ListByStatus: %w", err)
	}
	return users, nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, fmt.Errorf("userRepo.Count: %w", err)
	}
	return n, nil
}

func (r *userRepo) CountByStatus(ctx context.Context, status domain.UserStatus) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM users WHERE status = $1", status); err != nil {
		return 0, fmt.Errorf("userRepo.CountByStatus: %w", err)
	}
	return n, nil
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, "UpdateLastLogin",
		"UPDATE users SET last_login = NOW(), updated_at = NOW() WHERE id = $1", id)
}

func (r *userRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.exec(ctx, "UpdatePassword",
		"UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2", passwordHash, id)
}
