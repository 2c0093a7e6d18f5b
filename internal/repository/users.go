package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/receiptlens/receiptlens/internal/common"
	"github.com/receiptlens/receiptlens/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, salt string) error
}

type userRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewUserRepository(db *DB, logger *slog.Logger) UserRepository {
	return &userRepository{db: db, logger: logger}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, salt, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID.String(), user.Username, user.PasswordHash, user.Salt, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrDuplicate
		}
		r.logger.Error("failed to create user", "username", user.Username, "error", err)
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, salt, created_at FROM users WHERE id = ?`,
		id.String()))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, salt, created_at FROM users WHERE username = ?`,
		username))
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, salt string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, salt = ? WHERE id = ?`,
		passwordHash, salt, id.String())
	if err != nil {
		r.logger.Error("failed to update password", "user_id", id, "error", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *userRepository) scanUser(row *sql.Row) (*entity.User, error) {
	var (
		user entity.User
		id   string
	)
	err := row.Scan(&id, &user.Username, &user.PasswordHash, &user.Salt, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint")
}
