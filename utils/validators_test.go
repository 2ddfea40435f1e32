package utils

import "testing"

func TestIsValidNickname(t *testing.T) {
	valid := []string{"ana", "petar_92", "luka_lukic", "a_b_c_123"}
	for _, nickname := range valid {
		if !IsValidNickname(nickname) {
			t.Errorf("Expected %q to be valid", nickname)
		}
	}

	invalid := []string{"", "ab", "Ana", "petar-92", "name with spaces", "verylongnicknamethatkeepsgoingandgoing"}
	for _, nickname := range invalid {
		if IsValidNickname(nickname) {
			t.Errorf("Expected %q to be invalid", nickname)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	valid := []string{"+385981234567", "0981234567", "+385 98 123 4567"}
	for _, phone := range valid {
		if !IsValidPhone(phone) {
			t.Errorf("Expected %q to be valid", phone)
		}
	}

	invalid := []string{"", "123", "not-a-phone", "+385-98-123"}
	for _, phone := range invalid {
		if IsValidPhone(phone) {
			t.Errorf("Expected %q to be invalid", phone)
		}
	}
}

func TestIsValidPassword(t *testing.T) {
	valid := []string{"Lozinka1", "abc123!", "Str0ng_pass"}
	for _, password := range valid {
		if !IsValidPassword(password) {
			t.Errorf("Expected %q to be valid", password)
		}
	}

	invalid := []string{"", "short", "alllowercase", "123456"}
	for _, password := range invalid {
		if IsValidPassword(password) {
			t.Errorf("Expected %q to be invalid", password)
		}
	}
}
