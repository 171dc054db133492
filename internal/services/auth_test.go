package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bdsumon4u/KroyJogot24/internal/models"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

type fakeAdminStore struct {
	admins map[string]*models.Admin
}

func (s *fakeAdminStore) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	admin, ok := s.admins[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return admin, nil
}

func (s *fakeAdminStore) GetByID(_ context.Context, adminID int64) (*models.Admin, error) {
	for _, admin := range s.admins {
		if admin.ID == adminID {
			return admin, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func newTestAuthService(t *testing.T, admins ...*models.Admin) *AuthService {
	t.Helper()

	store := &fakeAdminStore{admins: make(map[string]*models.Admin)}
	for _, admin := range admins {
		store.admins[admin.Email] = admin
	}

	svc, err := NewAuthService(store, testJWTSecret, nil)
	if err != nil {
		t.Fatalf("failed to build auth service: %v", err)
	}
	return svc
}

func testAdmin(t *testing.T, id int64, email, password string, role int) *models.Admin {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return &models.Admin{
		ID:           id,
		Name:         "Admin",
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       role,
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	admin := testAdmin(t, 1, "owner@example.com", "correct horse battery", models.RoleOwner)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid credentials", email: "owner@example.com", password: "correct horse battery"},
		{name: "email is case insensitive", email: "Owner@Example.com ", password: "correct horse battery"},
		{name: "wrong password", email: "owner@example.com", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "ghost@example.com", password: "correct horse battery", wantErr: ErrInvalidCredentials},
		{name: "empty password", email: "owner@example.com", password: "", wantErr: ErrInvalidCredentials},
		{name: "empty email", email: "", password: "x", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := newTestAuthService(t, admin)

			result, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Admin.ID != admin.ID {
				t.Fatalf("admin id = %d, want %d", result.Admin.ID, admin.ID)
			}
			if result.Token == "" {
				t.Fatalf("expected a token")
			}
		})
	}
}

func TestVerifyToken(t *testing.T) {
	t.Parallel()

	admin := testAdmin(t, 7, "staff@example.com", "password123", 2)
	svc := newTestAuthService(t, admin)

	result, err := svc.Login(context.Background(), admin.Email, "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	got, err := svc.VerifyToken(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != admin.ID || got.RoleID != admin.RoleID {
		t.Fatalf("verified admin = %+v", got)
	}

	t.Run("tampered token", func(t *testing.T) {
		t.Parallel()

		tampered := result.Token[:len(result.Token)-2] + "xx"
		if _, err := svc.VerifyToken(context.Background(), tampered); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()

		if _, err := svc.VerifyToken(context.Background(), "not.a.token"); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		t.Parallel()

		other, err := NewAuthService(&fakeAdminStore{admins: map[string]*models.Admin{admin.Email: admin}}, strings.Repeat("z", 32), nil)
		if err != nil {
			t.Fatalf("failed to build auth service: %v", err)
		}
		foreign, err := other.Login(context.Background(), admin.Email, "password123")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if _, err := svc.VerifyToken(context.Background(), foreign.Token); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("admin removed after issue", func(t *testing.T) {
		t.Parallel()

		lone := testAdmin(t, 9, "gone@example.com", "password123", 1)
		issuer := newTestAuthService(t, lone)
		res, err := issuer.Login(context.Background(), lone.Email, "password123")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}

		verifier, err := NewAuthService(&fakeAdminStore{admins: map[string]*models.Admin{}}, testJWTSecret, nil)
		if err != nil {
			t.Fatalf("failed to build auth service: %v", err)
		}
		if _, err := verifier.VerifyToken(context.Background(), res.Token); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestNewAuthServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewAuthService(&fakeAdminStore{}, "short", nil); err == nil {
		t.Fatalf("expected error for short secret")
	}
}
