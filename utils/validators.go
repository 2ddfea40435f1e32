package utils

import (
	"regexp"
	"unicode"
)

var (
	nicknameRegex = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9][0-9 ]{7,19}$`)
)

// IsValidNickname checks the handle format: lowercase letters, digits
// and underscores, 3-30 characters.
func IsValidNickname(nickname string) bool {
	return nicknameRegex.MatchString(nickname)
}

// IsValidPhone accepts international numbers with an optional leading +.
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

func IsValidPassword(password string) bool {
	if len(password) < 6 {
		return false
	}

	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	// At least 3 of 4 character types required
	count := 0
	if hasUpper {
		count++
	}
	if hasLower {
		count++
	}
	if hasNumber {
		count++
	}
	if hasSpecial {
		count++
	}

	return count >= 3
}
