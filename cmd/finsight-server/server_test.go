package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finsight/internal/app"
	"finsight/internal/server"
)

// testServer creates an httptest.Server with the full finsight handler stack.
// No network calls happen unless a test asks for live market data.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	for _, name := range []string{"GEMINI_API_KEY", "FINSIGHT_GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(name, "")
	}
	configPath := writeTestConfig(t)
	a, err := app.NewApp(configPath)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	srv := server.NewServer(a)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// TestHealthEndpoint verifies GET /health reports healthy with service states.
func TestHealthEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Status   string            `json:"status"`
		Version  string            `json:"version"`
		Services map[string]string `json:"services"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if body.Status != "healthy" {
		t.Errorf("Expected status=healthy, got %q", body.Status)
	}
	if body.Services["yahoo_finance"] != "active" {
		t.Errorf("Expected yahoo_finance=active, got %q", body.Services["yahoo_finance"])
	}
	if body.Services["assistant"] != "disabled" {
		t.Errorf("Expected assistant=disabled without a key, got %q", body.Services["assistant"])
	}
}

// TestVersionEndpoint verifies GET /api/version returns version info.
func TestVersionEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/version")
	if err != nil {
		t.Fatalf("GET /api/version failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if body["version"] == "" {
		t.Error("Expected non-empty version field")
	}
}

// TestHealthEndpoint_MethodNotAllowed verifies POST to health returns 405.
func TestHealthEndpoint_MethodNotAllowed(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Post(ts.URL+"/health", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for POST /health, got %d", resp.StatusCode)
	}
}

// TestTopCompaniesEndpoint verifies the seed directory serves rankings with
// no upstream traffic.
func TestTopCompaniesEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/companies/top?limit=5")
	if err != nil {
		t.Fatalf("GET /api/v1/companies/top failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Companies []struct {
			Rank   int    `json:"rank"`
			Name   string `json:"name"`
			Ticker string `json:"ticker"`
		} `json:"companies"`
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if body.Count != 5 {
		t.Fatalf("Expected 5 companies, got %d", body.Count)
	}
	if body.Companies[0].Rank != 1 {
		t.Errorf("Expected first company at rank 1, got %d", body.Companies[0].Rank)
	}
}

// TestCompanyLookupEndpoint verifies GET /api/v1/companies/{ticker} against
// the seed directory.
func TestCompanyLookupEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/companies/AAPL")
	if err != nil {
		t.Fatalf("GET /api/v1/companies/AAPL failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Name   string `json:"name"`
		Ticker string `json:"ticker"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Ticker != "AAPL" || body.Name != "Apple" {
		t.Errorf("Expected Apple/AAPL, got %s/%s", body.Name, body.Ticker)
	}
}

// TestQueryEndpoint_Clarification verifies a question with no resolvable
// company gets a clarification answer, not an error and not a network call.
func TestQueryEndpoint_Clarification(t *testing.T) {
	ts := testServer(t)

	payload := strings.NewReader(`{"query": "What is the price?"}`)
	resp, err := http.Post(ts.URL+"/api/v1/query", "application/json", payload)
	if err != nil {
		t.Fatalf("POST /api/v1/query failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Intent  string `json:"intent"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !body.Success {
		t.Error("Expected success=true for a clarification answer")
	}
	if body.Message == "" {
		t.Error("Expected a clarification message")
	}
}

// TestQueryEndpoint_TooShort verifies the 400 guard on short questions.
func TestQueryEndpoint_TooShort(t *testing.T) {
	ts := testServer(t)

	payload := strings.NewReader(`{"query": "hi"}`)
	resp, err := http.Post(ts.URL+"/api/v1/query", "application/json", payload)
	if err != nil {
		t.Fatalf("POST /api/v1/query failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for a two-character query, got %d", resp.StatusCode)
	}
}

// TestQueryExamplesEndpoint verifies the examples payload shape.
func TestQueryExamplesEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/query/examples")
	if err != nil {
		t.Fatalf("GET /api/v1/query/examples failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Examples         []string `json:"examples"`
		SupportedQueries []string `json:"supported_queries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.Examples) == 0 {
		t.Error("Expected example questions")
	}
	if len(body.SupportedQueries) == 0 {
		t.Error("Expected supported query categories")
	}
}

// --- test helpers ---

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	config := `
[logging]
level = "error"
format = "console"
`
	configPath := filepath.Join(dir, "finsight.toml")
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}
