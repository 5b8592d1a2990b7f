package enums

import "testing"

func TestParseRole(t *testing.T) {
	role, err := ParseRole("admin")
	if err != nil {
		t.Fatalf("parse admin: %v", err)
	}
	if role != RoleAdmin {
		t.Fatalf("expected RoleAdmin, got %q", role)
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestProviderIsValid(t *testing.T) {
	if !ProviderOAuth.IsValid() {
		t.Fatal("oauth should be valid")
	}
	if Provider("github").IsValid() {
		t.Fatal("arbitrary provider should be invalid")
	}
}

func TestParseCartStatus(t *testing.T) {
	status, err := ParseCartStatus("converted")
	if err != nil {
		t.Fatalf("parse converted: %v", err)
	}
	if status != CartStatusConverted {
		t.Fatalf("expected converted, got %q", status)
	}
}
