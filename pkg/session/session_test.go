package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwave/client/pkg/mirror"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	m, err := mirror.Open(":memory:")
	require.NoError(t, err)
	return NewStore(m)
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("maya", "hunter2"))

	creds, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "maya", creds.Alias)
	assert.NotEmpty(t, creds.PasswordHash)
	assert.NotContains(t, string(creds.PasswordHash), "hunter2")
}

func TestLoadWithoutSession(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestVerify(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("maya", "hunter2"))

	assert.NoError(t, s.Verify("hunter2"))
	assert.ErrorIs(t, s.Verify("wrong"), ErrInvalidPassword)
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("maya", "hunter2"))
	require.NoError(t, s.Clear())

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSaveReplacesSession(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("maya", "hunter2"))
	require.NoError(t, s.Save("kai", "secret"))

	creds, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "kai", creds.Alias)
	assert.NoError(t, s.Verify("secret"))
}
