package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docuchat/auth-service/internal/domain"
	"github.com/docuchat/auth-service/internal/security"
)

type SeedUser struct {
	Email    string
	Username string
	Password string
}

type SeedReport struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// DemoUsers returns the demo corporate accounts seeded into non-production
// environments. Passwords satisfy the registration policy so the same
// accounts work through the public login flow.
func DemoUsers(allowedDomain string) []SeedUser {
	return []SeedUser{
		{Email: "alice" + allowedDomain, Username: "alice", Password: "Alice#2024pw"},
		{Email: "bob" + allowedDomain, Username: "bob_builder", Password: "Bob!2024pass"},
		{Email: "carol" + allowedDomain, Username: "carol_w", Password: "Carol?2024pw"},
	}
}

func Seed(db *gorm.DB, hasher *security.PasswordHasher, users []SeedUser) (*SeedReport, error) {
	report := &SeedReport{}
	for _, su := range users {
		email := strings.ToLower(su.Email)
		var existing domain.User
		err := db.Where("email = ? OR username = ?", email, su.Username).First(&existing).Error
		if err == nil {
			report.Skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("seed lookup %s: %w", su.Username, err)
		}
		hash, err := hasher.Hash(su.Password)
		if err != nil {
			return nil, fmt.Errorf("seed hash %s: %w", su.Username, err)
		}
		user := domain.User{
			ID:           uuid.NewString(),
			Email:        email,
			Username:     su.Username,
			PasswordHash: hash,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("seed create %s: %w", su.Username, err)
		}
		report.Created++
	}
	return report, nil
}
