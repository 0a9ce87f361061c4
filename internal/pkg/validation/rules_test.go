package validation

import (
	"strings"
	"testing"
)

func TestIsValidName(t *testing.T) {
	valid := []string{"Alice", "Mary-Jane O.", "J. R. R. Tolkien"}
	invalid := []string{"", "   ", "R2D2", "Alice,Bob", "Zoë"}
	for _, s := range valid {
		if !IsValidName(s) {
			t.Errorf("IsValidName(%q) = false", s)
		}
	}
	for _, s := range invalid {
		if IsValidName(s) {
			t.Errorf("IsValidName(%q) = true", s)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@x.com", "first.last@uni.edu", "a@b."}
	invalid := []string{"", "a.b", "a.b@com", "@", "a@b"}
	for _, s := range valid {
		if !IsValidEmail(s) {
			t.Errorf("IsValidEmail(%q) = false", s)
		}
	}
	for _, s := range invalid {
		if IsValidEmail(s) {
			t.Errorf("IsValidEmail(%q) = true", s)
		}
	}
}

func TestIsValidUsername(t *testing.T) {
	if !IsValidUsername("alice1") {
		t.Error("alice1 rejected")
	}
	for _, s := range []string{"", "al ice", "a,b", "a\nb"} {
		if IsValidUsername(s) {
			t.Errorf("IsValidUsername(%q) = true", s)
		}
	}
}

func TestIsValidPassword(t *testing.T) {
	ascii := strings.Repeat("a", PasswordMaxBytes)
	if !IsValidPassword(ascii) {
		t.Errorf("IsValidPassword(%d ascii bytes) = false", len(ascii))
	}
	// 72 characters but 144 bytes
	wide := strings.Repeat("é", PasswordMaxBytes)
	for _, s := range []string{"", ascii + "a", wide} {
		if IsValidPassword(s) {
			t.Errorf("IsValidPassword(%d bytes) = true", len(s))
		}
	}
}
