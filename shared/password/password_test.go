package password_test

import (
	"strings"
	"testing"

	"aspen/shared/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "front desk password", input: "front-desk-1"},
		{name: "unicode", input: "пароль123"},
		{name: "exactly the limit", input: strings.Repeat("a", password.MaxLength)},
		{name: "empty", input: "", wantErr: password.ErrEmptyPassword},
		{name: "too long", input: strings.Repeat("a", password.MaxLength+1), wantErr: password.ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := password.Hash(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, hash)

				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(hash, "$2a$"))
			assert.NoError(t, password.Verify(tt.input, hash))
		})
	}
}

func TestVerify(t *testing.T) {
	hash, err := password.Hash("night-auditor")
	require.NoError(t, err)

	tests := []struct {
		name      string
		input     string
		hash      string
		wantErr   error
		malformed bool
	}{
		{name: "match", input: "night-auditor", hash: hash},
		{name: "mismatch", input: "night-manager", hash: hash, wantErr: password.ErrInvalidPassword},
		{name: "empty password", input: "", hash: hash, wantErr: password.ErrInvalidPassword},
		{name: "empty hash", input: "night-auditor", hash: "", wantErr: password.ErrInvalidPassword},
		{name: "malformed hash", input: "night-auditor", hash: hash[:10], malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.input, tt.hash)

			switch {
			case tt.malformed:
				require.Error(t, err)
				assert.NotErrorIs(t, err, password.ErrInvalidPassword)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
