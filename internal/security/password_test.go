package security

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()
	hash, errHash := HashPassword("Jagannath@123")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	if hash == "Jagannath@123" {
		t.Fatal("hash equals plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}
	if !CheckPassword(hash, "Jagannath@123") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPasswordProducesDistinctHashes(t *testing.T) {
	t.Parallel()
	first, errFirst := HashPassword("secret-1")
	if errFirst != nil {
		t.Fatalf("hash password: %v", errFirst)
	}
	second, errSecond := HashPassword("secret-1")
	if errSecond != nil {
		t.Fatalf("hash password: %v", errSecond)
	}
	if first == second {
		t.Fatal("expected salted hashes to differ")
	}
	if !CheckPassword(first, "secret-1") || !CheckPassword(second, "secret-1") {
		t.Fatal("verify failed across salted hashes")
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	if errValidate := ValidatePassword("123456"); errValidate != nil {
		t.Fatalf("six characters rejected: %v", errValidate)
	}
	if errValidate := ValidatePassword("12345"); errValidate == nil {
		t.Fatal("five characters accepted")
	}
}
