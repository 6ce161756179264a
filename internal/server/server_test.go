package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store/jsonstore"
)

func testServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	s, err := jsonstore.Open(filepath.Join(t.TempDir(), jsonstore.DataFileName))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	srv := New(s, Config{
		Token:  token,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body, token string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCRUD(t *testing.T) {
	ts := testServer(t, "")

	resp := do(t, http.MethodPost, ts.URL+"/todos", `{"text":"bread"}`, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created model.Item
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID != 1 || created.Text != "bread" || created.Completed {
		t.Errorf("created = %+v", created)
	}

	if resp := do(t, http.MethodPost, ts.URL+"/todos/1/toggle", "", ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("toggle status = %d, want 204", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/todos", "", "")
	var items []model.Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []model.Item{{ID: 1, Text: "bread", Completed: true}}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	if resp := do(t, http.MethodDelete, ts.URL+"/todos/1", "", ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
	if resp := do(t, http.MethodDelete, ts.URL+"/todos/1", "", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestCreate_BadInput(t *testing.T) {
	ts := testServer(t, "")
	tests := []struct {
		name string
		body string
	}{
		{"blank text", `{"text":"   "}`},
		{"malformed", `{"text":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/todos", tt.body, "")
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestReplace(t *testing.T) {
	ts := testServer(t, "")
	resp := do(t, http.MethodPut, ts.URL+"/todos", `[{"id":3,"text":"c","completed":true}]`, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("replace status = %d, want 204", resp.StatusCode)
	}
	resp = do(t, http.MethodPost, ts.URL+"/todos", `{"text":"d"}`, "")
	var it model.Item
	_ = json.NewDecoder(resp.Body).Decode(&it)
	if it.ID != 4 {
		t.Errorf("id after replace = %d, want 4", it.ID)
	}
}

func TestReplace_Validation(t *testing.T) {
	ts := testServer(t, "")

	resp := do(t, http.MethodPut, ts.URL+"/todos", `[{"id":1,"text":"a"},{"id":1,"text":"b"}]`, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate id status = %d, want 400", resp.StatusCode)
	}

	resp = do(t, http.MethodPut, ts.URL+"/todos", `[{"id":2,"text":"  jam  "}]`, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("replace status = %d, want 204", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, ts.URL+"/todos", "", "")
	var items []model.Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]model.Item{{ID: 2, Text: "jam"}}, items); diff != "" {
		t.Errorf("list after replace mismatch (-want +got):\n%s", diff)
	}
}

func TestToken(t *testing.T) {
	ts := testServer(t, "s3cret")

	if resp := do(t, http.MethodGet, ts.URL+"/todos", "", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/todos", "", "wrong"); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/todos", "", "s3cret"); resp.StatusCode != http.StatusOK {
		t.Errorf("good token status = %d, want 200", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/health", "", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}
}

func TestServe_Shutdown(t *testing.T) {
	s, err := jsonstore.Open(filepath.Join(t.TempDir(), jsonstore.DataFileName))
	if err != nil {
		t.Fatal(err)
	}
	srv := New(s, Config{
		Addr:   "127.0.0.1:0",
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()
	cancel()
	if err := <-done; err != nil {
		t.Errorf("ListenAndServe() = %v, want nil after cancel", err)
	}
}
