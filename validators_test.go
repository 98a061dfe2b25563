package accounts_test

import (
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
)

func TestCheckPasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantMsg  string
	}{
		{
			name:     "valid password",
			password: "Abc1$x",
		},
		{
			name:     "too short",
			password: "Ab1$x",
			wantMsg:  "Password length should be at least 6 characters.",
		},
		{
			name:     "too long",
			password: "Abcdefghijklmnop123$x",
			wantMsg:  "Password length should not be greater than 20 characters.",
		},
		{
			name:     "missing digit",
			password: "Abcdef$x",
			wantMsg:  "Password should have at least one numeral.",
		},
		{
			name:     "missing uppercase",
			password: "abcdef1$",
			wantMsg:  "Password should have at least one uppercase letter.",
		},
		{
			name:     "missing lowercase",
			password: "ABCDEF1$",
			wantMsg:  "Password should have at least one lowercase letter.",
		},
		{
			name:     "missing symbol",
			password: "Abcdef12",
			wantMsg:  "Password should have at least one of the symbols $@#%.",
		},
		{
			name:     "wrong symbol family",
			password: "Abcdef12!",
			wantMsg:  "Password should have at least one of the symbols $@#%.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := accounts.CheckPasswordStrength(tt.password)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestCheckEmailFormat(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.example.co",
		"a+b@example.io",
	}

	invalid := []string{
		"",
		"   ",
		"plainaddress",
		"@example.com",
		"user@",
		"user@.com",
		"user @example.com",
	}

	for _, email := range valid {
		assert.NoError(t, accounts.CheckEmailFormat(email), email)
	}

	for _, email := range invalid {
		assert.Error(t, accounts.CheckEmailFormat(email), email)
	}
}
