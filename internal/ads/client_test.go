package ads

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"giga/internal/config"

	"golang.org/x/oauth2"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordingSleeper) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sleeper := &recordingSleeper{}
	provider := config.Static{Token: "dev-token", Customer: "123-456-7890", LoginCustomer: "111-222-3333"}
	client, err := NewClient(context.Background(), provider,
		WithEndpoint(server.URL),
		WithHTTPClient(server.Client()),
		WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access"})),
		WithSleeper(sleeper.sleep),
		WithClock(func() time.Time { return time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC) }),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client, sleeper
}

func TestNewClientRequiresDeveloperToken(t *testing.T) {
	_, err := NewClient(context.Background(), config.Static{Customer: "1"},
		WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "x"})))
	if !errors.Is(err, ErrMissingDeveloperToken) {
		t.Fatalf("expected ErrMissingDeveloperToken, got %v", err)
	}
}

func TestPostSetsHeaders(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("developer-token"); got != "dev-token" {
			t.Errorf("developer-token = %q", got)
		}
		if got := r.Header.Get("login-customer-id"); got != "1112223333" {
			t.Errorf("login-customer-id = %q", got)
		}
		if r.URL.Path != "/customers/1234567890/googleAds:search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"results":[]}`)
	})

	if _, err := client.Search(context.Background(), "", "SELECT customer.id FROM customer"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
}

func TestPostErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"error field", http.StatusOK, `{"error":{"code":400,"message":"bad developer token"}}`, "bad developer token"},
		{"errors field", http.StatusOK, `{"errors":[{"message":"quota"}]}`, "quota"},
		{"invalid json", http.StatusOK, `<html>oops</html>`, "not valid JSON"},
		{"status", http.StatusInternalServerError, `{}`, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := client.Search(context.Background(), "", "SELECT x FROM y")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if !strings.Contains(apiErr.Error(), tt.message) {
				t.Errorf("error %q does not mention %q", apiErr.Error(), tt.message)
			}
		})
	}
}

func TestChunk(t *testing.T) {
	items := make([]int, 45)
	chunks := chunk(items, 20)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 20 || len(chunks[1]) != 20 || len(chunks[2]) != 5 {
		t.Errorf("unexpected chunk sizes %d/%d/%d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if got := chunk([]int{}, 20); len(got) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(got))
	}
}

func TestHistoricalOptions(t *testing.T) {
	opts := historicalOptions(time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), 2)
	r := opts.YearMonthRange
	if r.End.Year != 2024 || r.End.Month != "DECEMBER" {
		t.Errorf("end = %+v, want DECEMBER 2024", r.End)
	}
	if r.Start.Year != 2022 || r.Start.Month != "DECEMBER" {
		t.Errorf("start = %+v, want DECEMBER 2022", r.Start)
	}
}

func TestSearchPaginates(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body searchBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls++
		if body.PageToken == "" {
			_, _ = io.WriteString(w, `{"results":[{"a":1},{"a":2}],"nextPageToken":"next"}`)
			return
		}
		_, _ = io.WriteString(w, `{"results":[{"a":3}]}`)
	})

	type row struct {
		A int `json:"a"`
	}
	rows, err := Query[row](context.Background(), client, "", "SELECT a FROM b")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if len(rows) != 3 || rows[2].A != 3 {
		t.Errorf("unexpected rows %+v", rows)
	}
}
