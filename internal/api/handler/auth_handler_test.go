package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/roknskapar/pdf-processor/internal/core/domain"
	"github.com/roknskapar/pdf-processor/internal/core/ports"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn          func(ctx context.Context, email, password string) (string, *domain.User, error)
	changePasswordFn func(ctx context.Context, userID, current, newPassword string) error
	createAdminFn    func(ctx context.Context, in ports.RegisterInput) (string, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	return s.changePasswordFn(ctx, userID, current, newPassword)
}

func (s *stubAuthService) CreateAdmin(ctx context.Context, in ports.RegisterInput) (string, error) {
	return s.createAdminFn(ctx, in)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Email != "alice@example.com" || in.FirstName != "Alice" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Email: in.Email, FirstName: in.FirstName, IsActive: true, Roles: []string{domain.RoleUser}}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := postJSON(e, "/api/auth/register", `{"email":"alice@example.com","password":"secret1","confirmPassword":"secret1","firstName":"Alice"}`)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "User registered successfully" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Register_PasswordsDiffer(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("service must not be called on invalid payload")
			return nil, nil
		},
	})

	c, _ := postJSON(e, "/api/auth/register", `{"email":"a@example.com","password":"secret1","confirmPassword":"other12"}`)

	err := handler.Register(c)
	if code := httpStatus(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("service must not be called on invalid payload")
			return nil, nil
		},
	})

	c, _ := postJSON(e, "/api/auth/register", `{"email":"a@example.com","password":"abc","confirmPassword":"abc"}`)

	err := handler.Register(c)
	if code := httpStatus(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	})

	c, _ := postJSON(e, "/api/auth/register", `{"email":"bob@example.com","password":"secret1","confirmPassword":"secret1"}`)

	// The service error travels untouched to the central error handler.
	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		loginFn: func(_ context.Context, email, password string) (string, *domain.User, error) {
			if email != "alice@example.com" || password != "secret1" {
				t.Fatalf("unexpected credentials: %s %s", email, password)
			}
			return "jwt-token", &domain.User{ID: "u1", Email: email}, nil
		},
	})

	c, rec := postJSON(e, "/api/auth/login", `{"email":"alice@example.com","password":"secret1"}`)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "jwt-token" {
		t.Fatalf("missing token in response: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatalf("password hash must never appear in responses")
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		loginFn: func(context.Context, string, string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	})

	c, _ := postJSON(e, "/api/auth/login", `{"email":"alice@example.com","password":"wrong12"}`)

	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_CreateAdmin_Success(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		createAdminFn: func(_ context.Context, in ports.RegisterInput) (string, error) {
			if in.SecretKey != "setup-key" {
				t.Fatalf("secret key not forwarded: %+v", in)
			}
			return "Admin user created successfully", nil
		},
	})

	c, rec := postJSON(e, "/api/auth/create-admin", `{"email":"admin@example.com","password":"secret1","confirmPassword":"secret1","secretKey":"setup-key"}`)

	if err := handler.CreateAdmin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Admin user created successfully") {
		t.Fatalf("message missing from response: %s", rec.Body.String())
	}
}

func TestAuthHandler_CreateAdmin_BadSecretKey(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		createAdminFn: func(context.Context, ports.RegisterInput) (string, error) {
			return "", domain.ErrSetupKeyInvalid
		},
	})

	c, _ := postJSON(e, "/api/auth/create-admin", `{"email":"admin@example.com","password":"secret1","confirmPassword":"secret1","secretKey":"wrong"}`)

	if err := handler.CreateAdmin(c); !errors.Is(err, domain.ErrSetupKeyInvalid) {
		t.Fatalf("expected ErrSetupKeyInvalid, got %v", err)
	}
}

func TestAuthHandler_ChangePassword_Success(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		changePasswordFn: func(_ context.Context, userID, current, newPassword string) error {
			if userID != "u1" || current != "old-pass" || newPassword != "new-pass" {
				t.Fatalf("unexpected args: %s %s %s", userID, current, newPassword)
			}
			return nil
		},
	})

	c, rec := postJSON(e, "/api/auth/change-password", `{"currentPassword":"old-pass","newPassword":"new-pass","confirmNewPassword":"new-pass"}`)
	c.Set("user_id", "u1")

	if err := handler.ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_ChangePassword_MissingClaims(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := postJSON(e, "/api/auth/change-password", `{"currentPassword":"old-pass","newPassword":"new-pass","confirmNewPassword":"new-pass"}`)

	err := handler.ChangePassword(c)
	if code := httpStatus(t, err); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}
