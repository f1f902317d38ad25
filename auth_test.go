package sieve

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("client42", secret)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	clientID, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateToken error: %v", err)
	}
	if clientID != "client42" {
		t.Errorf("Expected client42, got %q", clientID)
	}

	if _, err := ValidateToken(token, []byte("wrong-secret")); err == nil {
		t.Error("Expected error validating with wrong secret, got nil")
	}
	if _, err := ValidateToken("not-a-token", secret); err == nil {
		t.Error("Expected error validating garbage token, got nil")
	}
}

func TestRequireAuth(t *testing.T) {
	called := false
	handler := requireAuth(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	// With no key configured the API is open.
	Configure(Config{})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if !called || rr.Code != http.StatusOK {
		t.Fatalf("Expected open access without key, got %d", rr.Code)
	}

	// With a key, requests need a valid bearer token.
	Configure(Config{APIJWTKey: "s3cret"})
	defer Configure(Config{})

	called = false
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if called || rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rr.Code)
	}

	token, err := GenerateToken("tester", []byte("s3cret"))
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if !called || rr.Code != http.StatusOK {
		t.Errorf("Expected access with valid token, got %d", rr.Code)
	}
}
