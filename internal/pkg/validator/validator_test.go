package validator

import (
	"errors"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"123e4567-e89b-12d3-a456-426614174000",
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"",
	}
	for _, id := range valid {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}
}

func TestIsValidLoginID(t *testing.T) {
	cases := map[string]bool{
		"OIHAKU202503":  true,
		"OIJOXX2024100": true,
		"oihaku202503":  false,
		"OIHA202503":    false,
		"XXHAKU202503":  false,
	}
	for in, want := range cases {
		if got := IsValidLoginID(in); got != want {
			t.Errorf("IsValidLoginID(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsValidTimeOfDay(t *testing.T) {
	cases := map[string]bool{
		"09:00": true,
		"23:59": true,
		"24:00": false,
		"9:00":  false,
		"12:60": false,
	}
	for in, want := range cases {
		if got := IsValidTimeOfDay(in); got != want {
			t.Errorf("IsValidTimeOfDay(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Err() != nil {
		t.Fatalf("empty ValidationErrors.Err() = %v, want nil", errs.Err())
	}

	errs.Add("email", "email is required")
	errs.Add("email", "email must be valid")
	errs.Add("password", "password is required")

	err := errs.Err()
	var target ValidationErrors
	if !errors.As(err, &target) {
		t.Fatalf("errors.As failed for %T", err)
	}

	m := target.ToMap()
	if m["email"] != "email is required" {
		t.Errorf("ToMap()[email] = %q, want first message", m["email"])
	}
	if len(m) != 2 {
		t.Errorf("len(ToMap()) = %d, want 2", len(m))
	}
}
