package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bote/internal/members"
)

func TestMemberAddAndList(t *testing.T) {
	dir := newProject(t)

	out := mustRun(t, "member", "add", "1", "Marta Lopez Garcia", "--alias", "ml", "--repo", dir)
	assert.Contains(t, out, "Saved member 1 Marta Lopez Garcia (ML)")
	mustRun(t, "member", "add", "2", "Jon", "--bizum", "Jon Ander Etxeberria", "--portion", "double", "--repo", dir)

	out = mustRun(t, "member", "list", "--repo", dir)
	assert.Contains(t, out, "Marta Lopez Garcia")
	assert.Contains(t, out, "Jon Ander Etxeberria")
	assert.Contains(t, out, "double")
	assert.Contains(t, out, "XX")
}

func TestMemberAdd_Invalid(t *testing.T) {
	dir := newProject(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad id", []string{"member", "add", "x", "Ana"}, "member id"},
		{"zero id", []string{"member", "add", "0", "Ana"}, "must be positive"},
		{"long alias", []string{"member", "add", "3", "Ana", "--alias", "ANA"}, "two letters"},
		{"bad portion", []string{"member", "add", "3", "Ana", "--portion", "triple"}, "alcohol portion"},
		{"short pin", []string{"member", "add", "3", "Ana", "--pin", "12"}, "at least 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runBote(t, append(tt.args, "--repo", dir)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMemberLogin(t *testing.T) {
	dir := newProject(t)
	mustRun(t, "member", "add", "3", "Ana", "--pin", "1234", "--repo", dir)
	mustRun(t, "member", "add", "4", "Luis", "--repo", dir)

	out := mustRun(t, "member", "login", "3", "--pin", "1234", "--repo", dir)
	assert.Contains(t, out, "Welcome, Ana")

	_, err := runBote(t, "member", "login", "3", "--pin", "9999", "--repo", dir)
	assert.ErrorIs(t, err, members.ErrInvalidCredentials)

	// Members without a PIN cannot log in.
	_, err = runBote(t, "member", "login", "4", "--pin", "1234", "--repo", dir)
	assert.ErrorIs(t, err, members.ErrInvalidCredentials)
}
