package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sandp/medstock/internal/events"
	"github.com/sandp/medstock/internal/models"
	"github.com/sandp/medstock/internal/repo"
	"github.com/sandp/medstock/internal/transport"
	"github.com/sandp/medstock/pkg/hash"
	"github.com/sandp/medstock/pkg/logging"
	"github.com/sandp/medstock/pkg/session"
	"github.com/sandp/medstock/pkg/tokens"
)

type UserService struct {
	Repo      *repo.GormRepo
	Events    events.Publisher
	JWTSecret []byte
	Now       func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Login checks credentials for an ACTIVE user and returns a signed session
// token with its expiry. Every failure is reported as ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, req transport.LoginRequest) (*models.User, string, time.Time, error) {
	if err := validateStruct(req); err != nil {
		return nil, "", time.Time{}, err
	}

	u, err := s.Repo.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", time.Time{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if !hash.CheckPassword(u.PasswordHash, req.Password) {
		return nil, "", time.Time{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if u.Status != models.UserActive {
		return nil, "", time.Time{}, fmt.Errorf("%w: account is blocked", ErrUnauthorized)
	}
	if hash.NeedsRehash(u.PasswordHash, bcrypt.DefaultCost) {
		s.rehash(ctx, u, req.Password)
	}

	now := s.now()
	token, exp, err := tokens.SignSession(u.ID, u.Role, s.JWTSecret, now)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	if err := s.Repo.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, "", time.Time{}, err
	}
	u.LastLogin = &now
	return u, token, exp, nil
}

// rehash upgrades a digest made with an older cost. Failure keeps the old one.
func (s *UserService) rehash(ctx context.Context, u *models.User, password string) {
	digest, err := hash.HashPassword(password)
	if err == nil {
		err = s.Repo.SetPasswordHash(ctx, u.ID, digest)
	}
	if err != nil {
		logging.FromContext(ctx).Warn("password_rehash_failed", "user_id", u.ID, "error", err)
		return
	}
	u.PasswordHash = digest
}

// ResolveSession re-reads the user behind a session token so role and status
// always come from the store.
func (s *UserService) ResolveSession(ctx context.Context, id uuid.UUID) (session.Session, error) {
	u, err := s.Repo.GetUser(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return session.Session{}, fmt.Errorf("%w: user not found", ErrUnauthorized)
	}
	if err != nil {
		return session.Session{}, err
	}
	if u.Status != models.UserActive {
		return session.Session{}, fmt.Errorf("%w: account is blocked", ErrUnauthorized)
	}
	return session.Session{UserID: u.ID, Role: u.Role}, nil
}

func (s *UserService) Me(ctx context.Context, sess session.Session) (*models.User, error) {
	if !sess.Valid() {
		return nil, ErrUnauthorized
	}
	u, err := s.Repo.GetUser(ctx, sess.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	return u, err
}

// CreateUser registers a new account. When no password is supplied a random
// one is generated and returned once in the result.
func (s *UserService) CreateUser(ctx context.Context, sess session.Session, req transport.CreateUserRequest) (*transport.CreatedUser, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	taken, err := s.Repo.EmailTaken(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: email %s already registered", ErrConflict, req.Email)
	}

	out := &transport.CreatedUser{}
	password := req.Password
	if password != "" {
		if err := hash.CheckPolicy(password); err != nil {
			return nil, FieldErrors{"password": err.Error()}
		}
	} else {
		password, err = temporaryPassword()
		if err != nil {
			return nil, err
		}
		out.TemporaryPassword = password
	}
	h, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	createdBy := sess.UserID
	u := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Mobile:       req.Mobile,
		PasswordHash: h,
		Role:         req.Role,
		Status:       req.Status,
		CreatedBy:    &createdBy,
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email %s already registered", ErrConflict, req.Email)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	out.User = *u

	publish(ctx, s.Events, events.TopicUsers, u.ID.String(), map[string]any{
		"type":   events.UserCreated,
		"userId": u.ID,
		"role":   u.Role,
	})
	return out, nil
}

func (s *UserService) ListUsers(ctx context.Context, sess session.Session, search string) ([]models.User, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	users, err := s.Repo.ListUsers(ctx, search)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *UserService) UpdateUser(ctx context.Context, sess session.Session, id uuid.UUID, req transport.UpdateUserRequest) (*models.User, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if id == sess.UserID && req.Status != nil && *req.Status == models.UserBlocked {
		return nil, FieldErrors{"status": "cannot block your own account"}
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Mobile != nil {
		fields["mobile"] = *req.Mobile
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}

	err := s.Repo.UpdateUserFields(ctx, id, fields)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUsers, u.ID.String(), map[string]any{
		"type":   events.UserUpdated,
		"userId": u.ID,
		"status": u.Status,
	})
	return u, nil
}

// EnsureAdmin creates an ACTIVE admin with the given credentials unless the
// email is already registered. It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	taken, err := s.Repo.EmailTaken(ctx, email)
	if err != nil {
		return false, err
	}
	if taken {
		return false, nil
	}
	if err := hash.CheckPolicy(password); err != nil {
		return false, FieldErrors{"password": err.Error()}
	}
	h, err := hash.HashPassword(password)
	if err != nil {
		return false, err
	}
	u := &models.User{
		Name:         name,
		Email:        email,
		Mobile:       "0000000000",
		PasswordHash: h,
		Role:         models.RoleAdmin,
		Status:       models.UserActive,
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return false, err
	}
	return true, nil
}

func temporaryPassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
