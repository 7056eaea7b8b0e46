package e2e

import (
	"net/http"
	"testing"
)

func TestBaseURL(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	if body["service"] != "dubflow-api" {
		t.Errorf("service = %v, want dubflow-api", body["service"])
	}
	if _, ok := body["timestamp"]; !ok {
		t.Error("missing timestamp field")
	}
}

func TestHealth(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/health", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}

	services, ok := body["services"].(map[string]any)
	if !ok {
		t.Fatal("missing services map")
	}
	for _, name := range []string{"elevenlabs", "anthropic", "storage"} {
		if _, ok := services[name]; !ok {
			t.Errorf("services missing %q entry", name)
		}
	}
}

func TestAuthVerify(t *testing.T) {
	ta := setupApp(t)

	t.Run("no token", func(t *testing.T) {
		resp, err := doRequest(ta.app, http.MethodGet, "/auth/verify", "", nil)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		assertStatus(t, resp, http.StatusUnauthorized)
	})

	t.Run("malformed header", func(t *testing.T) {
		resp, err := doRequest(ta.app, http.MethodGet, "/auth/verify", "", map[string]string{
			"Authorization": "Token abc",
		})
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		assertStatus(t, resp, http.StatusUnauthorized)
	})

	t.Run("valid legacy token", func(t *testing.T) {
		resp, err := doRequest(ta.app, http.MethodGet, "/auth/verify", "", map[string]string{
			"Authorization": "Bearer " + generateToken(t),
		})
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		assertStatus(t, resp, http.StatusOK)

		if resp.Header.Get("X-User-Id") == "" {
			t.Error("X-User-Id header not set")
		}
		if resp.Header.Get("X-User-Email") == "" {
			t.Error("X-User-Email header not set")
		}
	})
}
