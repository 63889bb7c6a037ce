// Package services contains server-side business logic. Services depend on
// a dbx.Runner for connections and transactions and on a
// repomanager.RepositoryManager for storage, and report failures with the
// sentinel errors of package common.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/auth"
	"github.com/dmitrijs2005/storefront/internal/server/config"
	sm "github.com/dmitrijs2005/storefront/internal/server/mail"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/repomanager"
)

const resetTokenBytes = 32

// UserService handles accounts: registration, login, password reset,
// profiles and resolving bearer tokens to users.
type UserService struct {
	runner                      dbx.Runner
	repomanager                 repomanager.RepositoryManager
	mailer                      sm.Mailer
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	resetTokenValidityDuration  time.Duration
	frontendURL                 string
	now                         func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(runner dbx.Runner, m repomanager.RepositoryManager, mailer sm.Mailer, cfg *config.Config) *UserService {
	return &UserService{
		runner:                      runner,
		repomanager:                 m,
		mailer:                      mailer,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		resetTokenValidityDuration:  cfg.ResetTokenValidityDuration,
		frontendURL:                 strings.TrimRight(cfg.FrontendURL, "/"),
		now:                         time.Now,
	}
}

// Register creates a USER account. A taken email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, common.Validationf("password is required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Name: strings.TrimSpace(name), Email: email, PasswordHash: &hash}
	u, err := s.repomanager.Users(s.runner.Conn()).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the credentials and returns a signed access token. Unknown
// emails, accounts without a password and wrong passwords all yield
// common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", common.Validationf("email and password are required")
	}

	user, err := s.repomanager.Users(s.runner.Conn()).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}
	if user.PasswordHash == nil {
		return "", common.ErrorUnauthorized
	}

	ok, err := auth.CheckPassword(*user.PasswordHash, password)
	if err != nil {
		return "", fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return "", common.ErrorUnauthorized
	}

	return auth.GenerateToken(user.ID, user.Email, user.Role, s.jwtSecret, s.accessTokenValidityDuration)
}

// ForgotPassword stores a fresh reset token for the account and mails the
// reset link.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return common.Validationf("email is required")
	}

	repo := s.repomanager.Users(s.runner.Conn())
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.Validationf("email not found")
		}
		return fmt.Errorf("error searching user: %w", err)
	}

	token, err := common.MakeRandHexString(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := repo.SetResetToken(ctx, user.ID, token, s.now().Add(s.resetTokenValidityDuration)); err != nil {
		return fmt.Errorf("error saving reset token: %w", err)
	}

	link := s.frontendURL + "/reset-password/" + token
	return s.mailer.Send(ctx, sm.Message{
		To:      user.Email,
		Subject: "Reset your password",
		HTML:    fmt.Sprintf(`<p>Use the link below to reset your password. It expires in %s.</p><p><a href="%s">Reset password</a></p>`, s.resetTokenValidityDuration, link),
		Text:    fmt.Sprintf("Reset your password: %s (expires in %s)", link, s.resetTokenValidityDuration),
	})
}

// ResetPassword replaces the password of the account holding token and
// invalidates the token. Unknown or expired tokens yield
// common.ErrResetTokenExpired.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return common.Validationf("token and new password are required")
	}

	repo := s.repomanager.Users(s.runner.Conn())
	user, err := repo.GetByResetToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrResetTokenExpired
		}
		return fmt.Errorf("error searching reset token: %w", err)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to the current user row. A token for
// a deleted user yields common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.runner.Conn()).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	user, err := s.repomanager.Users(s.runner.Conn()).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user.Profile(), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, name string) (*models.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.Validationf("name is required")
	}
	user, err := s.repomanager.Users(s.runner.Conn()).UpdateName(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return user.Profile(), nil
}

// EnsureAdmin creates an ADMIN account for email, or promotes the existing
// one. A non-empty password replaces the stored one. It reports whether the
// account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, false, err
	}

	var hash string
	if password != "" {
		if hash, err = auth.HashPassword(password); err != nil {
			return nil, false, fmt.Errorf("hash password: %w", err)
		}
	}

	var (
		user    *models.User
		created bool
	)
	err = s.runner.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.GetByEmail(ctx, email)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			if hash == "" {
				return common.Validationf("password is required for a new account")
			}
			u, err = repo.Create(ctx, &models.User{Name: strings.TrimSpace(name), Email: email, PasswordHash: &hash})
			if err != nil {
				return fmt.Errorf("error creating user: %w", err)
			}
			created = true
		case err != nil:
			return fmt.Errorf("error searching user: %w", err)
		case hash != "":
			if err := repo.UpdatePassword(ctx, u.ID, hash); err != nil {
				return fmt.Errorf("error updating password: %w", err)
			}
		}

		if err := repo.SetRole(ctx, u.ID, common.RoleAdmin); err != nil {
			return fmt.Errorf("error setting role: %w", err)
		}
		u.Role = common.RoleAdmin
		user = u
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return user, created, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", common.Validationf("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", common.Validationf("invalid email %q", email)
	}
	return email, nil
}
