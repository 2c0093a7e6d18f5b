package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/receiptlens/receiptlens/internal/common"
	"github.com/receiptlens/receiptlens/internal/entity"
	"github.com/receiptlens/receiptlens/internal/repository"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

// The login failure message never distinguishes a missing account from a
// wrong password.
const badCredentials = "invalid username or password"

// Service implements registration, login and session verification over the
// user repository.
type Service struct {
	users    repository.UserRepository
	sessions *SessionStore
	logger   *slog.Logger
}

func NewService(users repository.UserRepository, sessions *SessionStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, sessions: sessions, logger: logger}
}

// Register creates an account with a freshly salted password hash.
func (s *Service) Register(ctx context.Context, username, password string) (*entity.User, error) {
	if len(username) < minUsernameLength {
		return nil, common.InvalidInputErrorf("username must be at least %d characters", minUsernameLength)
	}
	if len(password) < minPasswordLength {
		return nil, common.InvalidInputErrorf("password must be at least %d characters", minPasswordLength)
	}

	salt, err := NewSalt()
	if err != nil {
		return nil, common.WrapError(err, "generating salt")
	}
	user := &entity.User{
		Username:     username,
		PasswordHash: hex.EncodeToString(HashPassword(password, salt)),
		Salt:         hex.EncodeToString(salt),
	}
	created, err := s.users.Create(ctx, user)
	if errors.Is(err, common.ErrDuplicate) {
		return nil, common.NewAppError(common.CodeDuplicate, "username already exists", err)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", created.ID, "username", created.Username)
	return created, nil
}

// Login verifies credentials and mints a session.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		return Session{}, common.UnauthorizedError(badCredentials)
	}
	if err != nil {
		return Session{}, err
	}

	salt, hash, err := decodeCredentials(user)
	if err != nil {
		return Session{}, err
	}
	if !VerifyPassword(password, salt, hash) {
		s.logger.Warn("login rejected", "username", username)
		return Session{}, common.UnauthorizedError(badCredentials)
	}

	sess, err := s.sessions.Create(user.ID, user.Username)
	if err != nil {
		return Session{}, common.WrapError(err, "creating session")
	}
	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return sess, nil
}

// Logout invalidates a session token.
func (s *Service) Logout(token string) error {
	if !s.sessions.Delete(token) {
		return common.UnauthorizedError("invalid session")
	}
	return nil
}

// Verify returns the live session for a token.
func (s *Service) Verify(token string) (Session, bool) {
	return s.sessions.Get(token)
}

// ResetPassword replaces the password after checking the current one. The
// new hash gets a new salt.
func (s *Service) ResetPassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return common.InvalidInputErrorf("password must be at least %d characters", minPasswordLength)
	}
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		return common.UnauthorizedError(badCredentials)
	}
	if err != nil {
		return err
	}

	salt, hash, err := decodeCredentials(user)
	if err != nil {
		return err
	}
	if !VerifyPassword(oldPassword, salt, hash) {
		return common.UnauthorizedError(badCredentials)
	}

	newSalt, err := NewSalt()
	if err != nil {
		return common.WrapError(err, "generating salt")
	}
	newHash := HashPassword(newPassword, newSalt)
	if err := s.users.UpdatePassword(ctx, user.ID, hex.EncodeToString(newHash), hex.EncodeToString(newSalt)); err != nil {
		return err
	}
	s.logger.Info("password reset", "user_id", user.ID, "username", user.Username)
	return nil
}

func decodeCredentials(user *entity.User) (salt, hash []byte, err error) {
	salt, err = hex.DecodeString(user.Salt)
	if err != nil {
		return nil, nil, common.InternalError("stored salt is corrupt")
	}
	hash, err = hex.DecodeString(user.PasswordHash)
	if err != nil {
		return nil, nil, common.InternalError("stored password hash is corrupt")
	}
	return salt, hash, nil
}
