// README: Benchmark cases; HTTP contract checks for chat, itinerary, and trips, plus DB/Redis and throughput.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"tripcraft/internal/infra"
	"tripcraft/internal/modules/assistant"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	// sessionID is set by the chat case and reused by the history checks.
	sessionID string
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 100 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency.Round(time.Millisecond))
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func validTrip() map[string]any {
	return map[string]any{
		"destination": "Paris",
		"start_date":  "2025-06-01",
		"end_date":    "2025-06-03",
		"budget":      2000,
		"travelers":   2,
		"interests":   []string{"art", "food"},
	}
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "DB reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "Redis reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "Apply migrations/*.sql",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				if err := infra.ApplyMigrations(ctx, r.db, r.cfg.MigrationDir); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "Every CREATE TABLE in migrations/ exists",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationDir)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("tables=%d", len(tables))}
			},
		},
		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}, nil),

		// Assistant
		httpCase("Chat: empty message -> 400", base+"/api/assistant/chat", map[string]any{"message": "   "}, []int{400}, []int{404}),
		{
			Name:  "Chat: message gets a reply and session id",
			Focus: "Reply is non-empty; model failures are reported in text",
			Run: func(ctx context.Context, r *Runner) Result {
				var reply assistant.Reply
				res := r.postJSON(ctx, base+"/api/assistant/chat", map[string]any{"message": "What should I see in Paris?"}, &reply)
				if res.Status != "PASS" {
					return res
				}
				if reply.SessionID == "" || reply.Response == "" {
					return Result{Status: "FAIL", Latency: res.Latency, Note: "empty reply or session id"}
				}
				r.sessionID = reply.SessionID
				return res
			},
		},
		{
			Name:  "Chat: history readable",
			Focus: "GET /api/assistant/sessions/:id",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.sessionID == "" {
					return Result{Status: "SKIP", Note: "no session from chat case"}
				}
				return httpCaseMethod("", http.MethodGet, base+"/api/assistant/sessions/"+r.sessionID, nil, []int{200}, nil).Run(ctx, r)
			},
		},
		{
			Name:  "Chat: history snapshot in Redis",
			Focus: "Session persisted under assistant:session:<id>:history",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil || r.sessionID == "" {
					return Result{Status: "SKIP", Note: "redis or session unavailable"}
				}
				n, err := r.redis.Exists(ctx, assistant.HistoryKey(r.sessionID)).Result()
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if n == 0 {
					return Result{Status: "FAIL", Note: "snapshot missing"}
				}
				return Result{Status: "PASS"}
			},
		},
		manualCase("Chat: model failover", "configure an invalid first model in TRIPCRAFT_AI_MODELS and confirm replies still arrive"),

		// Itinerary
		{
			Name:  "Itinerary: generate returns one entry per day",
			Focus: "3-day request -> 3 day schedules",
			Run: func(ctx context.Context, r *Runner) Result {
				var body struct {
					Itinerary []json.RawMessage `json:"itinerary"`
					Source    string            `json:"source"`
				}
				res := r.postJSON(ctx, base+"/api/itineraries/generate", validTrip(), &body)
				if res.Status != "PASS" {
					return res
				}
				if body.Source == "fallback" && len(body.Itinerary) != 3 {
					return Result{Status: "FAIL", Latency: res.Latency, Note: fmt.Sprintf("fallback days=%d", len(body.Itinerary))}
				}
				res.Note = fmt.Sprintf("source=%s days=%d", body.Source, len(body.Itinerary))
				return res
			},
		},
		httpCase("Itinerary: bad date -> 400", base+"/api/itineraries/generate", map[string]any{
			"destination": "Paris",
			"start_date":  "June 1",
			"end_date":    "2025-06-03",
			"budget":      2000,
			"travelers":   2,
		}, []int{400}, []int{404}),
		httpCase("Itinerary: end before start -> 400", base+"/api/itineraries/generate", map[string]any{
			"destination": "Paris",
			"start_date":  "2025-06-05",
			"end_date":    "2025-06-03",
			"budget":      2000,
			"travelers":   2,
		}, []int{400}, []int{404}),
		httpCase("Itinerary: zero budget -> 400", base+"/api/itineraries/generate", map[string]any{
			"destination": "Paris",
			"start_date":  "2025-06-01",
			"end_date":    "2025-06-03",
			"budget":      0,
			"travelers":   2,
		}, []int{400}, []int{404}),

		// Trips
		httpCaseMethod("Trips: list without token -> 401", http.MethodGet, base+"/api/trips", nil, []int{401}, []int{404}),
		httpCase("Trips: create without token -> 401", base+"/api/trips", validTrip(), []int{401}, []int{404}),
		manualCase("Trips: quota refund on fallback", "generate with no model key and confirm /api/usage remaining is unchanged"),

		// Rate limiting
		{
			Name:  "RateLimit: chat burst is throttled",
			Focus: "429 after the configured burst",
			Run: func(ctx context.Context, r *Runner) Result {
				return burst(ctx, r, base+"/api/assistant/chat", map[string]any{"message": ""})
			},
		},

		// Performance
		{
			Name:  "Perf: itinerary generate throughput",
			Focus: "Fallback path without a model key",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/itineraries/generate", validTrip())
			},
		},
	}
}

func (r *Runner) postJSON(ctx context.Context, url string, body, out any) Result {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	defer resp.Body.Close()
	latency := time.Since(start)
	if resp.StatusCode == http.StatusNotFound {
		return Result{Status: "PENDING", Latency: latency, Note: "route not mounted"}
	}
	if resp.StatusCode != http.StatusOK {
		return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Result{Status: "FAIL", Latency: latency, Note: "decode: " + err.Error()}
	}
	return Result{Status: "PASS", Latency: latency}
}

func httpCase(name, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses, pendingStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = bytes.NewReader(b)
			}
			req, _ := http.NewRequestWithContext(ctx, method, url, reader)
			req.Header.Set("Content-Type", "application/json")
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			if contains(okStatuses, resp.StatusCode) {
				return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			if contains(pendingStatuses, resp.StatusCode) {
				return Result{Status: "PENDING", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

func manualCase(name, note string) TestCase {
	return TestCase{
		Name:  name,
		Focus: "Manual",
		Run: func(ctx context.Context, r *Runner) Result {
			return Result{Status: "SKIP", Note: note}
		},
	}
}

// burst fires Concurrency requests at once and expects at least one 429.
func burst(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		limited int
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
			req.Header.Set("Content-Type", "application/json")
			resp, err := r.httpc.Do(req)
			if err != nil {
				return
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests {
				mu.Lock()
				limited++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if limited == 0 {
		return Result{Status: "PENDING", Note: "no 429 observed; burst may exceed concurrency"}
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("limited=%d/%d", limited, r.cfg.Concurrency)}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount, limited int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				count++
				if resp.StatusCode == http.StatusTooManyRequests {
					limited++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d limited=%d", rps, errCount, limited)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

var createTableRe = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func extractTables(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	var tables []string
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		for _, m := range createTableRe.FindAllStringSubmatch(string(b), -1) {
			tables = append(tables, m[1])
		}
	}
	return tables, nil
}
