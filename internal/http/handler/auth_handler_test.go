package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docuchat/auth-service/internal/service"
)

type stubAuthService struct {
	registerResult *service.RegisterResult
	registerErr    error
	loginResult    *service.LoginResult
	loginErr       error
	resetErr       error

	gotEmail    string
	gotUsername string
	gotPassword string
}

func (s *stubAuthService) Register(email, username, password string) (*service.RegisterResult, error) {
	s.gotEmail, s.gotUsername, s.gotPassword = email, username, password
	return s.registerResult, s.registerErr
}

func (s *stubAuthService) Login(username, password string) (*service.LoginResult, error) {
	s.gotUsername, s.gotPassword = username, password
	return s.loginResult, s.loginErr
}

func (s *stubAuthService) ResetPassword(username, newPassword string) error {
	s.gotUsername, s.gotPassword = username, newPassword
	return s.resetErr
}

func doRequest(t *testing.T, h http.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)

	var parsed map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rr.Body.String())
	}
	return rr, parsed
}

func TestRegisterSuccess(t *testing.T) {
	svc := &stubAuthService{registerResult: &service.RegisterResult{
		ID: "id-1", Email: "jdoe@mmc.com", Username: "jdoe",
	}}
	h := NewAuthHandler(svc, "@mmc.com")

	rr, body := doRequest(t, h.Register, `{"email":"jdoe@mmc.com","username":"jdoe","password":"Passw0rd!"}`)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rr.Code)
	}
	if body["message"] != "Registration successful. You can now log in." {
		t.Errorf("message = %q", body["message"])
	}
	if body["id"] != "id-1" || body["email"] != "jdoe@mmc.com" || body["username"] != "jdoe" {
		t.Errorf("identity fields wrong: %v", body)
	}
	if body["isVerified"] != true {
		t.Errorf("isVerified = %v, want true", body["isVerified"])
	}
	if svc.gotEmail != "jdoe@mmc.com" || svc.gotUsername != "jdoe" || svc.gotPassword != "Passw0rd!" {
		t.Errorf("service received %q %q %q", svc.gotEmail, svc.gotUsername, svc.gotPassword)
	}
}

func TestRegisterErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "validation error",
			err:         &service.InvalidInputError{Message: "Password must contain at least one uppercase letter"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Password must contain at least one uppercase letter",
		},
		{
			name:        "domain rejected",
			err:         service.ErrDomainNotAllowed,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Only @mmc.com email addresses can register",
		},
		{
			name:        "identity taken",
			err:         service.ErrIdentityTaken,
			wantStatus:  http.StatusConflict,
			wantMessage: "Email or username already in use",
		},
		{
			name:        "store failure",
			err:         errors.New("connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&stubAuthService{registerErr: tt.err}, "@mmc.com")
			rr, body := doRequest(t, h.Register, `{"email":"jdoe@mmc.com","username":"jdoe","password":"Passw0rd!"}`)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if body["message"] != tt.wantMessage {
				t.Errorf("message = %q, want %q", body["message"], tt.wantMessage)
			}
		})
	}
}

func TestRegisterMalformedBodyTreatedAsEmpty(t *testing.T) {
	svc := &stubAuthService{registerErr: &service.InvalidInputError{Message: "email, username, password required"}}
	h := NewAuthHandler(svc, "@mmc.com")

	rr, body := doRequest(t, h.Register, `{not json`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if body["message"] != "email, username, password required" {
		t.Errorf("message = %q", body["message"])
	}
	if svc.gotEmail != "" || svc.gotUsername != "" || svc.gotPassword != "" {
		t.Errorf("expected zero-value fields, got %q %q %q", svc.gotEmail, svc.gotUsername, svc.gotPassword)
	}
}

func TestLoginSuccess(t *testing.T) {
	svc := &stubAuthService{loginResult: &service.LoginResult{
		ID: "id-1", Username: "jdoe", Email: "jdoe@mmc.com", Token: "signed.jwt.token",
	}}
	h := NewAuthHandler(svc, "@mmc.com")

	rr, body := doRequest(t, h.Login, `{"username":"jdoe","password":"Passw0rd!"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if body["message"] != "Login successful" {
		t.Errorf("message = %q", body["message"])
	}
	if body["token"] != "signed.jwt.token" {
		t.Errorf("token = %q", body["token"])
	}
}

func TestLoginErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "missing fields",
			err:         &service.InvalidInputError{Message: "username and password required"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "username and password required",
		},
		{
			name:        "unknown user",
			err:         service.ErrUserNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: "User does not exist. Please register.",
		},
		{
			name:        "domain rejected",
			err:         service.ErrDomainNotAllowed,
			wantStatus:  http.StatusForbidden,
			wantMessage: "Only @mmc.com users can log in",
		},
		{
			name:        "wrong password",
			err:         service.ErrInvalidCredentials,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid credentials",
		},
		{
			name:        "store failure",
			err:         errors.New("connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&stubAuthService{loginErr: tt.err}, "@mmc.com")
			rr, body := doRequest(t, h.Login, `{"username":"jdoe","password":"x"}`)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if body["message"] != tt.wantMessage {
				t.Errorf("message = %q, want %q", body["message"], tt.wantMessage)
			}
		})
	}
}

func TestResetPasswordSuccess(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, "@mmc.com")

	rr, body := doRequest(t, h.ResetPassword, `{"username":"jdoe","newPassword":"NewPassw0rd!"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if body["message"] != "Password reset successful. Please log in with your new password." {
		t.Errorf("message = %q", body["message"])
	}
}

func TestResetPasswordErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "weak password",
			err:         &service.InvalidInputError{Message: "Password must be at least 8 characters long"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Password must be at least 8 characters long",
		},
		{
			name:        "unknown user",
			err:         service.ErrUserNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: "User not found",
		},
		{
			name:        "domain rejected",
			err:         service.ErrDomainNotAllowed,
			wantStatus:  http.StatusForbidden,
			wantMessage: "Only @mmc.com users can reset password",
		},
		{
			name:        "store failure",
			err:         errors.New("connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&stubAuthService{resetErr: tt.err}, "@mmc.com")
			rr, body := doRequest(t, h.ResetPassword, `{"username":"jdoe","newPassword":"x"}`)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if body["message"] != tt.wantMessage {
				t.Errorf("message = %q, want %q", body["message"], tt.wantMessage)
			}
		})
	}
}
