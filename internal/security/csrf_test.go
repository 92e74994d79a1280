package security

import "testing"

func TestCSRFTokenRoundTrip(t *testing.T) {
	g := NewCSRFGenerator("test-secret")

	token, err := g.GenerateToken("session-123")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken() returned empty token")
	}

	if !g.ValidateToken("session-123", token) {
		t.Error("ValidateToken() rejected its own token")
	}
	if g.ValidateToken("session-456", token) {
		t.Error("ValidateToken() accepted a token for another session")
	}
	if g.ValidateToken("session-123", "bogus") {
		t.Error("ValidateToken() accepted a bogus token")
	}
	if g.ValidateToken("", token) {
		t.Error("ValidateToken() accepted an empty session ID")
	}
}

func TestCSRFTokenDistinctSecrets(t *testing.T) {
	a := NewCSRFGenerator("secret-a")
	b := NewCSRFGenerator("secret-b")

	token, err := a.GenerateToken("session-123")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if b.ValidateToken("session-123", token) {
		t.Error("token validated across different secrets")
	}
}

func TestGenerateTokenRequiresSession(t *testing.T) {
	g := NewCSRFGenerator("test-secret")
	if _, err := g.GenerateToken(""); err == nil {
		t.Error("GenerateToken() accepted an empty session ID")
	}
}
