package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("expected hash to differ from plaintext")
	}
	if !CheckPassword("correct horse", hash) {
		t.Fatal("expected matching password to verify")
	}
	if CheckPassword("wrong", hash) {
		t.Fatal("expected wrong password to fail verification")
	}
	if CheckPassword(hash, "correct horse") {
		t.Fatal("expected swapped arguments to fail verification")
	}
}
