package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

type Config struct {
	BaseURL     string
	Profile     string
	Domain      string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
}

type Result struct {
	TotalRequests int64
	Failures      int64
	Status2xx     int64
	Status4xx     int64
	Status5xx     int64
}

type request struct {
	method string
	path   string
	body   map[string]string
}

// Run drives synthetic auth traffic against a running instance so metric
// and trace pipelines can be validated end to end.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Domain == "" {
		cfg.Domain = "@mmc.com"
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 15
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	requests := requestsForProfile(cfg.Profile, cfg.Domain, rng)
	if len(requests) == 0 {
		return Result{}, fmt.Errorf("unknown profile: %s", cfg.Profile)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var total, failures, s2xx, s4xx, s5xx int64
	jobs := make(chan request, cfg.Concurrency*2)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Concurrency; i++ {
		g.Go(func() error {
			for job := range jobs {
				var body *bytes.Reader
				if job.body != nil {
					raw, err := json.Marshal(job.body)
					if err != nil {
						atomic.AddInt64(&failures, 1)
						continue
					}
					body = bytes.NewReader(raw)
				} else {
					body = bytes.NewReader(nil)
				}
				req, err := http.NewRequestWithContext(gctx, job.method, cfg.BaseURL+job.path, body)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				if job.body != nil {
					req.Header.Set("Content-Type", "application/json")
				}
				resp, err := client.Do(req)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				_ = resp.Body.Close()
				atomic.AddInt64(&total, 1)
				switch {
				case resp.StatusCode >= 200 && resp.StatusCode < 300:
					atomic.AddInt64(&s2xx, 1)
				case resp.StatusCode >= 400 && resp.StatusCode < 500:
					atomic.AddInt64(&s4xx, 1)
				case resp.StatusCode >= 500:
					atomic.AddInt64(&s5xx, 1)
				}
			}
			return nil
		})
	}

	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()
	i := 0
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			jobs <- requests[i%len(requests)]
			i++
		}
	}
	close(jobs)
	_ = g.Wait()
	return Result{TotalRequests: total, Failures: failures, Status2xx: s2xx, Status4xx: s4xx, Status5xx: s5xx}, nil
}

func requestsForProfile(profile, domain string, rng *rand.Rand) []request {
	suffix := fmt.Sprintf("%06d", rng.Intn(1000000))
	register := request{
		method: http.MethodPost,
		path:   "/register",
		body: map[string]string{
			"email":    "load_" + suffix + domain,
			"username": "load_" + suffix,
			"password": "LoadGen!2024",
		},
	}
	login := request{
		method: http.MethodPost,
		path:   "/login",
		body:   map[string]string{"username": "load_" + suffix, "password": "LoadGen!2024"},
	}
	badDomain := request{
		method: http.MethodPost,
		path:   "/register",
		body: map[string]string{
			"email":    "outsider_" + suffix + "@gmail.com",
			"username": "outsider_" + suffix,
			"password": "Outsider!2024",
		},
	}
	badLogin := request{
		method: http.MethodPost,
		path:   "/login",
		body:   map[string]string{"username": "load_" + suffix, "password": "wrong-password"},
	}
	health := request{method: http.MethodGet, path: "/health/ready"}

	switch strings.ToLower(profile) {
	case "", "mixed":
		return []request{register, login, health, badLogin}
	case "auth":
		return []request{register, login}
	case "error-heavy":
		return []request{badDomain, badLogin}
	default:
		return nil
	}
}
