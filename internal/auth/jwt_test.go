package auth

import (
	"testing"
)

const testSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "u-1", "alice", "manager", []string{"s-1", "s-2"})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != "u-1" {
		t.Errorf("expected user id u-1, got %s", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("expected username alice, got %s", claims.Username)
	}
	if claims.Role != "manager" {
		t.Errorf("expected role manager, got %s", claims.Role)
	}
	if len(claims.StoreIDs) != 2 || claims.StoreIDs[0] != "s-1" || claims.StoreIDs[1] != "s-2" {
		t.Errorf("expected store ids [s-1 s-2], got %v", claims.StoreIDs)
	}
	if claims.ID == "" {
		t.Error("expected non-empty JTI")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, "u-1", "alice", "partner", nil)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ValidateToken("other-secret", token); err == nil {
		t.Error("expected error validating with wrong secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := ValidateToken(testSecret, "not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestUniqueJTIs(t *testing.T) {
	t1, _ := GenerateToken(testSecret, "u-1", "alice", "employee", nil)
	t2, _ := GenerateToken(testSecret, "u-1", "alice", "employee", nil)

	c1, _ := ValidateToken(testSecret, t1)
	c2, _ := ValidateToken(testSecret, t2)
	if c1.ID == c2.ID {
		t.Error("expected distinct JTIs for separate tokens")
	}
}
