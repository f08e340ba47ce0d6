package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ErlanBelekov/travel-ease/internal/domain"
	"github.com/ErlanBelekov/travel-ease/internal/email"
	"github.com/ErlanBelekov/travel-ease/internal/usecase"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

type fakeUserRepo struct {
	create      func(ctx context.Context, user *domain.User) (*domain.User, error)
	findByEmail func(ctx context.Context, email string) (*domain.User, error)
	findByID    func(ctx context.Context, id string) (*domain.User, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return r.create(ctx, user)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

// memUserRepo backs a fakeUserRepo with a map keyed by email.
func memUserRepo() *fakeUserRepo {
	byEmail := map[string]*domain.User{}
	return &fakeUserRepo{
		create: func(_ context.Context, u *domain.User) (*domain.User, error) {
			if _, ok := byEmail[u.Email]; ok {
				return nil, domain.ErrEmailTaken
			}
			stored := *u
			stored.ID = "user-" + u.Email
			byEmail[u.Email] = &stored
			return &stored, nil
		},
		findByEmail: func(_ context.Context, e string) (*domain.User, error) {
			if u, ok := byEmail[e]; ok {
				return u, nil
			}
			return nil, domain.ErrUserNotFound
		},
		findByID: func(_ context.Context, id string) (*domain.User, error) {
			for _, u := range byEmail {
				if u.ID == id {
					return u, nil
				}
			}
			return nil, domain.ErrUserNotFound
		},
	}
}

type fakeTokenIssuer struct {
	issue func(userID string) (string, error)
}

func (f *fakeTokenIssuer) Issue(userID string) (string, error) {
	return f.issue(userID)
}

type fakeEmailSender struct {
	send func(ctx context.Context, msg email.Message) error
}

func (s *fakeEmailSender) Send(ctx context.Context, msg email.Message) error {
	return s.send(ctx, msg)
}

// ---- helpers ----

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tokenFor(userID string) (string, error) { return "token-for-" + userID, nil }

func newAuthUsecase(repo *fakeUserRepo, sender *fakeEmailSender) *usecase.AuthUsecase {
	if sender == nil {
		sender = &fakeEmailSender{send: func(context.Context, email.Message) error { return nil }}
	}
	return usecase.NewAuthUsecase(repo, &fakeTokenIssuer{issue: tokenFor}, sender, bcrypt.MinCost, discardLogger())
}

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	return ve.Message
}

// ---- Register ----

func TestRegister_Success_ReturnsTokenAndHashesPassword(t *testing.T) {
	repo := memUserRepo()
	var sent email.Message
	sender := &fakeEmailSender{send: func(_ context.Context, msg email.Message) error {
		sent = msg
		return nil
	}}

	res, err := newAuthUsecase(repo, sender).Register(context.Background(), usecase.RegisterInput{
		FullName: "  Ada Lovelace ",
		Email:    " Ada@Example.com",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.User.FullName != "Ada Lovelace" {
		t.Errorf("fullName = %q, want trimmed", res.User.FullName)
	}
	if res.User.Email != "ada@example.com" {
		t.Errorf("email = %q, want normalized", res.User.Email)
	}
	if res.AccessToken != "token-for-"+res.User.ID {
		t.Errorf("token = %q, not issued for the new user", res.AccessToken)
	}
	if res.User.PasswordHash == "s3cret" {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("s3cret")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
	if sent.To != "ada@example.com" {
		t.Errorf("welcome email sent to %q", sent.To)
	}
}

func TestRegister_MissingField_ReturnsValidationError(t *testing.T) {
	cases := []usecase.RegisterInput{
		{Email: "a@b.c", Password: "x"},
		{FullName: "A", Password: "x"},
		{FullName: "A", Email: "a@b.c"},
		{FullName: "   ", Email: "a@b.c", Password: "x"},
	}
	for _, in := range cases {
		_, err := newAuthUsecase(memUserRepo(), nil).Register(context.Background(), in)
		if got := validationMessage(t, err); got != "All fields are required" {
			t.Errorf("message = %q", got)
		}
	}
}

func TestRegister_Twice_ReturnsErrEmailTaken(t *testing.T) {
	uc := newAuthUsecase(memUserRepo(), nil)
	in := usecase.RegisterInput{FullName: "A", Email: "a@b.c", Password: "x"}

	if _, err := uc.Register(context.Background(), in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := uc.Register(context.Background(), in)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("want ErrEmailTaken, got %v", err)
	}
}

func TestRegister_RaceOnInsert_ReturnsErrEmailTaken(t *testing.T) {
	repo := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*domain.User, error) { return nil, domain.ErrUserNotFound },
		create: func(context.Context, *domain.User) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	_, err := newAuthUsecase(repo, nil).Register(context.Background(),
		usecase.RegisterInput{FullName: "A", Email: "a@b.c", Password: "x"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("want ErrEmailTaken, got %v", err)
	}
}

func TestRegister_PasswordTooLong_ReturnsValidationError(t *testing.T) {
	_, err := newAuthUsecase(memUserRepo(), nil).Register(context.Background(),
		usecase.RegisterInput{FullName: "A", Email: "a@b.c", Password: strings.Repeat("p", 73)})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("want ErrValidation, got %v", err)
	}
}

func TestRegister_EmailFailure_StillSucceeds(t *testing.T) {
	sender := &fakeEmailSender{send: func(context.Context, email.Message) error {
		return errors.New("mail provider down")
	}}
	_, err := newAuthUsecase(memUserRepo(), sender).Register(context.Background(),
		usecase.RegisterInput{FullName: "A", Email: "a@b.c", Password: "x"})
	if err != nil {
		t.Errorf("registration must not fail on email errors, got %v", err)
	}
}

// ---- Login ----

func TestLogin_Success_ReturnsFreshToken(t *testing.T) {
	repo := memUserRepo()
	uc := newAuthUsecase(repo, nil)
	reg, err := uc.Register(context.Background(), usecase.RegisterInput{FullName: "A", Email: "a@b.c", Password: "pw"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := uc.Login(context.Background(), "A@B.C", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.User.ID != reg.User.ID {
		t.Errorf("logged in as %q, want %q", res.User.ID, reg.User.ID)
	}
	if res.AccessToken == "" {
		t.Error("empty access token")
	}
}

func TestLogin_WrongPassword_ReturnsErrInvalidCredentials(t *testing.T) {
	uc := newAuthUsecase(memUserRepo(), nil)
	if _, err := uc.Register(context.Background(), usecase.RegisterInput{FullName: "A", Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := uc.Login(context.Background(), "a@b.c", "nope")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail_ReturnsErrUserNotFound(t *testing.T) {
	_, err := newAuthUsecase(memUserRepo(), nil).Login(context.Background(), "ghost@b.c", "pw")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestLogin_MissingCredentials_ReturnsValidationError(t *testing.T) {
	_, err := newAuthUsecase(memUserRepo(), nil).Login(context.Background(), "", "pw")
	if got := validationMessage(t, err); got != "Email and Password are Required" {
		t.Errorf("message = %q", got)
	}
}

// ---- CurrentUser ----

func TestCurrentUser_Deleted_ReturnsErrUnauthenticated(t *testing.T) {
	_, err := newAuthUsecase(memUserRepo(), nil).CurrentUser(context.Background(), "user-gone")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("want ErrUnauthenticated, got %v", err)
	}
}

func TestCurrentUser_RepoError_Propagates(t *testing.T) {
	repoErr := errors.New("db down")
	repo := &fakeUserRepo{findByID: func(context.Context, string) (*domain.User, error) { return nil, repoErr }}

	_, err := newAuthUsecase(repo, nil).CurrentUser(context.Background(), "user-1")
	if !errors.Is(err, repoErr) {
		t.Errorf("want wrapped repoErr, got %v", err)
	}
	if errors.Is(err, domain.ErrUnauthenticated) {
		t.Error("store failure must not look like a missing user")
	}
}
