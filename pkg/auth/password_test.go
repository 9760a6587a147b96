package auth

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		shouldFail bool
	}{
		{
			name:       "valid minimum length",
			password:   "abc123",
			shouldFail: false,
		},
		{
			name:       "valid long password",
			password:   "correct horse battery staple",
			shouldFail: false,
		},
		{
			name:       "too short",
			password:   "abc12",
			shouldFail: true,
		},
		{
			name:       "empty",
			password:   "",
			shouldFail: true,
		},
		{
			name:       "too long",
			password:   strings.Repeat("a", 73),
			shouldFail: true,
		},
		{
			name:       "exactly at max",
			password:   strings.Repeat("a", 72),
			shouldFail: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)

			if tt.shouldFail && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tt.shouldFail && err != nil {
				t.Errorf("expected no error, got: %v", err)
			}
		})
	}
}

func TestHashAndComparePassword(t *testing.T) {
	password := "swole-patrol-42"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == "" {
		t.Error("hash should not be empty")
	}

	if hash == password {
		t.Error("hash should not equal plaintext password")
	}

	if err := ComparePassword(hash, password); err != nil {
		t.Errorf("ComparePassword with correct password failed: %v", err)
	}

	if err := ComparePassword(hash, "wrong-password"); err == nil {
		t.Error("ComparePassword with wrong password should fail")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("expected error for empty password")
	}
}
