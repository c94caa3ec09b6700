package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docuchat/auth-service/internal/domain"
	"github.com/docuchat/auth-service/internal/repository"
	"github.com/docuchat/auth-service/internal/security"
	"github.com/docuchat/auth-service/internal/validation"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound means the username has no record. Deliberately distinct
	// from ErrInvalidCredentials: the API exposes 404 vs 401 on login.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials covers a wrong password. Callers never learn
	// more than that the credential pair did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrIdentityTaken means the email or username already has a record,
	// without saying which.
	ErrIdentityTaken = errors.New("email or username already in use")
	// ErrDomainNotAllowed means the email fails the corporate domain policy.
	// The policy is re-derived from the stored email on every login and
	// reset, so tightening the domain locks out existing accounts too.
	ErrDomainNotAllowed = errors.New("email domain not allowed")
)

// InvalidInputError carries the full validation message for a rejected
// request: either the missing-field phrasing or all violated rules joined
// with ", ".
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func invalidInput(v validation.Violations) error {
	return &InvalidInputError{Message: v.Join(", ")}
}

type RegisterResult struct {
	ID       string
	Email    string
	Username string
}

type LoginResult struct {
	ID        string
	Username  string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// AuthService orchestrates registration, login, and password reset against
// the credential store. It holds no mutable state of its own; every
// operation is a straight-line sequence of validation, store access, and
// hashing/token work.
type AuthService struct {
	userRepo      repository.UserRepository
	hasher        *security.PasswordHasher
	jwtMgr        *security.JWTManager
	allowedDomain string
}

func NewAuthService(userRepo repository.UserRepository, hasher *security.PasswordHasher, jwtMgr *security.JWTManager, allowedDomain string) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		hasher:        hasher,
		jwtMgr:        jwtMgr,
		allowedDomain: strings.ToLower(allowedDomain),
	}
}

// Register creates a credential record. The domain policy check runs before
// the uniqueness lookup so callers outside the corporate domain cannot probe
// which identities exist.
func (s *AuthService) Register(email, username, password string) (*RegisterResult, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return nil, &InvalidInputError{Message: "email, username, password required"}
	}
	if v := validation.Email(email); !v.OK() {
		return nil, invalidInput(v)
	}
	if !s.domainAllowed(email) {
		return nil, ErrDomainNotAllowed
	}
	if v := validation.Username(username); !v.OK() {
		return nil, invalidInput(v)
	}
	if v := validation.Password(password); !v.OK() {
		return nil, invalidInput(v)
	}

	normalized := strings.ToLower(email)
	_, err := s.userRepo.FindByEmailOrUsername(normalized, username)
	if err == nil {
		return nil, ErrIdentityTaken
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("existence lookup: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        normalized,
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(user); err != nil {
		// Two concurrent registrations can both pass the lookup; the unique
		// index settles the race and the later writer lands here.
		if errors.Is(err, repository.ErrDuplicateIdentity) {
			return nil, ErrIdentityTaken
		}
		return nil, err
	}
	return &RegisterResult{ID: user.ID, Email: user.Email, Username: user.Username}, nil
}

// Login verifies the credential pair and issues a signed token bound to the
// identity id.
func (s *AuthService) Login(username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, &InvalidInputError{Message: "username and password required"}
	}
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !s.domainAllowed(user.Email) {
		return nil, ErrDomainNotAllowed
	}
	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	token, expiresAt, err := s.jwtMgr.Sign(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// ResetPassword overwrites the stored hash with one derived from
// newPassword. The new password is validated before any store access, so a
// weak password never mutates state.
func (s *AuthService) ResetPassword(username, newPassword string) error {
	if username == "" || newPassword == "" {
		return &InvalidInputError{Message: "username and newPassword required"}
	}
	if v := validation.Password(newPassword); !v.OK() {
		return invalidInput(v)
	}
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !s.domainAllowed(user.Email) {
		return ErrDomainNotAllowed
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(user.ID, hash)
}

func (s *AuthService) domainAllowed(email string) bool {
	return strings.HasSuffix(strings.ToLower(email), s.allowedDomain)
}
