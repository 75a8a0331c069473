package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/shared"
	tu "github.com/desertthunder/tdx/internal/testing"
)

func TestStoreClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			c := NewStoreClient("http://example.com/", customClient)

			if c.baseURL != "http://example.com" {
				t.Errorf("expected trailing slash to be trimmed, got %s", c.baseURL)
			}
			if c.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			c := NewStoreClient("", nil)

			if c.baseURL != "http://localhost:8000" {
				t.Errorf("expected default baseURL 'http://localhost:8000', got %s", c.baseURL)
			}
			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		tt := []struct {
			name      string
			filter    models.Filter
			wantQuery string
		}{
			{name: "No Filter", filter: models.FilterAll, wantQuery: ""},
			{name: "Completed", filter: models.FilterCompleted, wantQuery: "completed=1"},
			{name: "Active", filter: models.FilterActive, wantQuery: "completed=0"},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if r.Method != http.MethodGet {
						t.Errorf("expected GET method, got %s", r.Method)
					}
					if r.URL.Path != "/todos" {
						t.Errorf("expected path '/todos', got %s", r.URL.Path)
					}
					if r.URL.RawQuery != tc.wantQuery {
						t.Errorf("expected query %q, got %q", tc.wantQuery, r.URL.RawQuery)
					}
					w.Header().Set("Content-Type", "application/json")
					json.NewEncoder(w).Encode([]models.Item{{ID: 1, Name: "buy milk"}})
				}))
				defer server.Close()

				items, err := NewStoreClient(server.URL, nil).List(context.Background(), tc.filter)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if len(items) != 1 || items[0].Name != "buy milk" {
					t.Errorf("unexpected items: %+v", items)
				}
			})
		}

		t.Run("Null Body Becomes Empty Slice", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("null"))
			}))
			defer server.Close()

			items, err := NewStoreClient(server.URL, nil).List(context.Background(), models.FilterAll)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if items == nil || len(items) != 0 {
				t.Errorf("expected empty non-nil slice, got %#v", items)
			}
		})

		t.Run("Invalid JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			}))
			defer server.Close()

			_, err := NewStoreClient(server.URL, nil).List(context.Background(), models.FilterAll)
			if !errors.Is(err, shared.ErrStoreRequest) {
				t.Errorf("expected ErrStoreRequest, got %v", err)
			}
		})
	})

	t.Run("Create", func(t *testing.T) {
		t.Run("Sends Name And Completed False", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if r.URL.Path != "/todos/" {
					t.Errorf("expected path '/todos/', got %s", r.URL.Path)
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
				}

				body, _ := io.ReadAll(r.Body)
				var payload map[string]any
				if err := json.Unmarshal(body, &payload); err != nil {
					t.Fatalf("invalid request body: %v", err)
				}
				if payload["name"] != "wash car" || payload["completed"] != false {
					t.Errorf("unexpected payload: %v", payload)
				}
				if _, ok := payload["id"]; ok {
					t.Error("create payload must not carry an id")
				}

				w.WriteHeader(http.StatusCreated)
				json.NewEncoder(w).Encode(models.Item{ID: 2, Name: "wash car"})
			}))
			defer server.Close()

			item, err := NewStoreClient(server.URL, nil).Create(context.Background(), "wash car")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if item.ID != 2 || item.Name != "wash car" || item.Completed {
				t.Errorf("unexpected item: %+v", item)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("Sends Full Record", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut {
					t.Errorf("expected PUT method, got %s", r.Method)
				}
				if r.URL.Path != "/todos/1" {
					t.Errorf("expected path '/todos/1', got %s", r.URL.Path)
				}

				var payload map[string]any
				json.NewDecoder(r.Body).Decode(&payload)
				if len(payload) != 2 || payload["name"] != "buy milk" || payload["completed"] != true {
					t.Errorf("expected full record {name, completed}, got %v", payload)
				}
				w.Write([]byte("garbage that is never decoded"))
			}))
			defer server.Close()

			err := NewStoreClient(server.URL, nil).Update(context.Background(), models.Item{ID: 1, Name: "buy milk", Completed: true})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Rejects Unconfirmed Item", func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
			}))
			defer server.Close()

			err := NewStoreClient(server.URL, nil).Update(context.Background(), models.Item{Name: "draft"})
			if !errors.Is(err, shared.ErrStoreRequest) || !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrStoreRequest and ErrInvalidArgument, got %v", err)
			}
			if calls.Load() != 0 {
				t.Error("expected no request for an item without an id")
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("Calls Item Path", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("expected DELETE method, got %s", r.Method)
				}
				if r.URL.Path != "/todos/3" {
					t.Errorf("expected path '/todos/3', got %s", r.URL.Path)
				}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			if err := NewStoreClient(server.URL, nil).Delete(context.Background(), 3); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Status Error Carries Detail", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"detail":"todo 3 not found"}`))
			}))
			defer server.Close()

			err := NewStoreClient(server.URL, nil).Delete(context.Background(), 3)
			if !errors.Is(err, shared.ErrStoreRequest) {
				t.Fatalf("expected ErrStoreRequest, got %v", err)
			}

			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError beneath ErrStoreRequest, got %v", err)
			}
			if statusErr.StatusCode != http.StatusNotFound {
				t.Errorf("expected status 404, got %d", statusErr.StatusCode)
			}
			if statusErr.Detail != "todo 3 not found" {
				t.Errorf("expected detail to be decoded, got %q", statusErr.Detail)
			}
		})
	})

	t.Run("Failures", func(t *testing.T) {
		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			_, err := NewStoreClient("http://example.com", client).List(context.Background(), models.FilterAll)
			if !errors.Is(err, shared.ErrStoreRequest) {
				t.Errorf("expected ErrStoreRequest, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			_, err := NewStoreClient("http://example.com", client).List(context.Background(), models.FilterAll)
			if !errors.Is(err, shared.ErrStoreRequest) {
				t.Errorf("expected ErrStoreRequest, got %v", err)
			}
		})

		t.Run("Server Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			_, err := NewStoreClient(server.URL, nil).Create(context.Background(), "x")
			if !errors.Is(err, shared.ErrStoreRequest) {
				t.Errorf("expected ErrStoreRequest, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := NewStoreClient(server.URL, nil).Delete(ctx, 1)
			if !errors.Is(err, shared.ErrStoreRequest) {
				t.Errorf("expected ErrStoreRequest, got %v", err)
			}
		})
	})

	t.Run("WithRateLimit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		c := NewStoreClient(server.URL, nil, WithRateLimit(20))
		start := time.Now()
		for i := 1; i <= 3; i++ {
			if err := c.Delete(context.Background(), i); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		// burst of 1 at 20 rps: the 2nd and 3rd calls each wait ~50ms
		if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
			t.Errorf("expected requests to be paced, took %v", elapsed)
		}
	})
}

func TestListPath(t *testing.T) {
	tt := []struct {
		filter models.Filter
		want   string
	}{
		{models.FilterAll, "/todos"},
		{models.FilterCompleted, "/todos?completed=1"},
		{models.FilterActive, "/todos?completed=0"},
	}

	for _, tc := range tt {
		t.Run(tc.filter.String(), func(t *testing.T) {
			if got := ListPath(tc.filter); got != tc.want {
				t.Errorf("ListPath() = %s, want %s", got, tc.want)
			}
		})
	}
}
