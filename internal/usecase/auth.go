package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ErlanBelekov/travel-ease/internal/domain"
	"github.com/ErlanBelekov/travel-ease/internal/email"
	"github.com/ErlanBelekov/travel-ease/internal/metrics"
	"github.com/ErlanBelekov/travel-ease/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgAllFieldsRequired   = "All fields are required"
	msgCredentialsRequired = "Email and Password are Required"
	msgPasswordTooLong     = "Password must be at most 72 bytes"
)

// TokenIssuer is the part of the token service that account operations need.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type AuthUsecase struct {
	users      repository.UserRepository
	tokens     TokenIssuer
	mailer     email.Sender
	bcryptCost int
	logger     *slog.Logger
}

func NewAuthUsecase(users repository.UserRepository, tokens TokenIssuer, mailer email.Sender, bcryptCost int, logger *slog.Logger) *AuthUsecase {
	return &AuthUsecase{
		users:      users,
		tokens:     tokens,
		mailer:     mailer,
		bcryptCost: bcryptCost,
		logger:     logger.With("component", "auth_usecase"),
	}
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

type AuthResult struct {
	User        *domain.User
	AccessToken string
}

// Register creates the account, signs a token for it and sends a welcome
// email. The email is best-effort: a delivery failure is only logged.
func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	fullName := strings.TrimSpace(input.FullName)
	emailAddr := normalizeEmail(input.Email)
	if fullName == "" || emailAddr == "" || input.Password == "" {
		return nil, domain.NewValidationError(msgAllFieldsRequired)
	}

	_, err := u.users.FindByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		return nil, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), u.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.NewValidationError(msgPasswordTooLong)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// The unique index still guards against a concurrent registration
	// slipping in between the lookup above and this insert.
	user, err := u.users.Create(ctx, &domain.User{
		FullName:     fullName,
		Email:        emailAddr,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	metrics.AccountsCreatedTotal.Inc()

	accessToken, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if err := u.mailer.Send(ctx, email.WelcomeMessage(user.Email, user.FullName)); err != nil {
		u.logger.WarnContext(ctx, "send welcome email", "error", err)
	}

	return &AuthResult{User: user, AccessToken: accessToken}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (*AuthResult, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return nil, domain.NewValidationError(msgCredentialsRequired)
	}

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("unknown_email").Inc()
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	accessToken, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return &AuthResult{User: user, AccessToken: accessToken}, nil
}

// CurrentUser resolves the authenticated identity to its user record. An
// identity whose user no longer exists is reported as ErrUnauthenticated.
func (u *AuthUsecase) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
