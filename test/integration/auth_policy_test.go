package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
)

func TestRegisterRejectsOutsideDomain(t *testing.T) {
	baseURL, client, closeFn := newAuthTestServer(t)
	defer closeFn()

	resp, body := doJSON(t, client, http.MethodPost, baseURL+"/register", map[string]string{
		"email":    "outsider@gmail.com",
		"username": "outsider",
		"password": "Valid#Pass1234",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["message"] != "Only @mmc.com email addresses can register" {
		t.Errorf("message = %q", body["message"])
	}

	// the rejected account must not be able to log in either
	resp, _ = doJSON(t, client, http.MethodPost, baseURL+"/login", map[string]string{
		"username": "outsider",
		"password": "Valid#Pass1234",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("login status = %d, want 404", resp.StatusCode)
	}
}

func TestRegisterDuplicateIdentity(t *testing.T) {
	baseURL, client, closeFn := newAuthTestServer(t)
	defer closeFn()

	first := map[string]string{
		"email":    "dupe@mmc.com",
		"username": "dupe",
		"password": "Valid#Pass1234",
	}
	resp, _ := doJSON(t, client, http.MethodPost, baseURL+"/register", first)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first register status = %d", resp.StatusCode)
	}

	t.Run("same username different email", func(t *testing.T) {
		resp, body := doJSON(t, client, http.MethodPost, baseURL+"/register", map[string]string{
			"email":    "other@mmc.com",
			"username": "dupe",
			"password": "Valid#Pass1234",
		})
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("status = %d, want 409", resp.StatusCode)
		}
		if body["message"] != "Email or username already in use" {
			t.Errorf("message = %q", body["message"])
		}
	})

	t.Run("same email different username", func(t *testing.T) {
		resp, _ := doJSON(t, client, http.MethodPost, baseURL+"/register", map[string]string{
			"email":    "dupe@mmc.com",
			"username": "dupe_two",
			"password": "Valid#Pass1234",
		})
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("status = %d, want 409", resp.StatusCode)
		}
	})

	t.Run("email case is normalized", func(t *testing.T) {
		resp, _ := doJSON(t, client, http.MethodPost, baseURL+"/register", map[string]string{
			"email":    "DUPE@MMC.COM",
			"username": "dupe_three",
			"password": "Valid#Pass1234",
		})
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("status = %d, want 409", resp.StatusCode)
		}
	})
}

func TestRegisterValidationMessages(t *testing.T) {
	baseURL, client, closeFn := newAuthTestServer(t)
	defer closeFn()

	tests := []struct {
		name        string
		body        map[string]string
		wantMessage string
	}{
		{
			name:        "empty body",
			body:        map[string]string{},
			wantMessage: "email, username, password required",
		},
		{
			name: "weak password lists every violation",
			body: map[string]string{
				"email":    "weak@mmc.com",
				"username": "weakpw",
				"password": "short",
			},
			wantMessage: "Password must be at least 8 characters long, Password must contain at least one uppercase letter, Password must contain at least one number, Password must contain at least one special character",
		},
		{
			name: "bad username",
			body: map[string]string{
				"email":    "badname@mmc.com",
				"username": "x",
				"password": "Valid#Pass1234",
			},
			wantMessage: "Username must be at least 3 characters long",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, client, http.MethodPost, baseURL+"/register", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if body["message"] != tt.wantMessage {
				t.Errorf("message = %q, want %q", body["message"], tt.wantMessage)
			}
		})
	}
}

func TestConcurrentRegistrationSingleWinner(t *testing.T) {
	baseURL, client, closeFn := newAuthTestServer(t)
	defer closeFn()

	const attempts = 8
	payload := map[string]string{
		"email":    "race@mmc.com",
		"username": "race",
		"password": "Valid#Pass1234",
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	statuses := make([]int, attempts)
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			resp, err := client.Post(baseURL+"/register", "application/json", bytes.NewReader(raw))
			if err != nil {
				errs[slot] = err
				return
			}
			resp.Body.Close()
			statuses[slot] = resp.StatusCode
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
	}

	created, conflicts := 0, 0
	for _, s := range statuses {
		switch s {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		default:
			t.Errorf("unexpected status %d", s)
		}
	}
	if created != 1 {
		t.Fatalf("created = %d, want exactly 1", created)
	}
	if conflicts != attempts-1 {
		t.Fatalf("conflicts = %d, want %d", conflicts, attempts-1)
	}
}
