package auth

import (
	"testing"

	"github.com/parisxmas/OxiDB/qrform/internal/models"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("admin123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "admin123" {
		t.Fatal("hash must not equal the plaintext")
	}
	other, _ := HashPassword("admin123")
	if hash == other {
		t.Error("same password should hash differently (random salt)")
	}
	if !CheckPassword("admin123", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("admin124", hash) {
		t.Error("wrong password accepted")
	}
	if CheckPassword("admin123", "invalid-format") {
		t.Error("malformed hash accepted")
	}
}

func TestVerify(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	v := NewVerifier(models.AdminIdentity{Username: "admin", PasswordHash: hash})

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"exact pair", "admin", "s3cret", true},
		{"wrong password", "admin", "s3cret!", false},
		{"wrong username", "root", "s3cret", false},
		{"case mismatch username", "Admin", "s3cret", false},
		{"case mismatch password", "admin", "S3CRET", false},
		{"empty username", "", "s3cret", false},
		{"empty password", "admin", "", false},
		{"both empty", "", "", false},
		{"username with padding", "admin ", "s3cret", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Verify(tt.username, tt.password); got != tt.want {
				t.Errorf("Verify(%q, %q) = %v, want %v", tt.username, tt.password, got, tt.want)
			}
		})
	}
}

func TestVerifyWithoutConfiguredHash(t *testing.T) {
	v := NewVerifier(models.AdminIdentity{Username: "admin"})
	if v.Verify("admin", "anything") {
		t.Fatal("verifier without a hash must reject everything")
	}
}
