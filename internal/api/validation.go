package api

import (
	"fmt"
	"unicode/utf8"
)

// Input limits for request fields. Lengths count runes; JSON binding has
// already replaced invalid UTF-8 with U+FFFD.
const (
	MaxUsernameLen   = 30
	MaxPasswordBytes = 72 // bcrypt rejects longer inputs
	MaxEmailLen      = 128
	MaxHazardTypeLen = 60
	MaxLocationLen   = 128
)

type fieldLimit struct {
	name  string
	value string
	max   int
}

func validateString(value, field string, maxLen int) error {
	if n := utf8.RuneCountInString(value); n > maxLen {
		return fmt.Errorf("%s too long (max %d characters)", field, maxLen)
	}
	return nil
}

func validateFields(fields ...fieldLimit) error {
	for _, f := range fields {
		if err := validateString(f.value, f.name, f.max); err != nil {
			return err
		}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password too long (max %d bytes)", MaxPasswordBytes)
	}
	return nil
}
