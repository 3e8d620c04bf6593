package storage

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beautycontest/contestclient"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := InitStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return s
}

func TestEndpoints(t *testing.T) {

	s := newTestStorage(t)

	endpoints, err := s.GetEndpoints()
	require.NoError(t, err)
	assert.Empty(t, endpoints)

	require.NoError(t, s.SetEndpoint(contestclient.COMMIT_URL_KEY, "http://db/commit"))
	require.NoError(t, s.SetEndpoint(contestclient.REVEAL_URL_KEY, "http://db/reveal"))

	url, err := s.GetEndpoint(contestclient.COMMIT_URL_KEY)
	require.NoError(t, err)
	assert.Equal(t, "http://db/commit", url)

	endpoints, err = s.GetEndpoints()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		contestclient.COMMIT_URL_KEY: "http://db/commit",
		contestclient.REVEAL_URL_KEY: "http://db/reveal",
	}, endpoints)

	// Empty url clears the override
	require.NoError(t, s.SetEndpoint(contestclient.REVEAL_URL_KEY, ""))
	url, err = s.GetEndpoint(contestclient.REVEAL_URL_KEY)
	require.NoError(t, err)
	assert.Equal(t, "", url)

	revision, err := s.GetEndpointsRevision()
	require.NoError(t, err)
	assert.Equal(t, 3, revision)
}

func TestUnknownEndpointKey(t *testing.T) {

	s := newTestStorage(t)

	err := s.SetEndpoint("NONCE", "secret")
	assert.True(t, errors.Is(err, ErrUnknownEndpointKey))

	err = s.DeleteEndpoint("NONCE")
	assert.True(t, errors.Is(err, ErrUnknownEndpointKey))
}

func TestReopen(t *testing.T) {

	dir := t.TempDir()

	s, err := InitStorage(dir)
	require.NoError(t, err)
	require.NoError(t, s.SetEndpoint(contestclient.COMMIT_URL_KEY, "http://db/commit"))
	s.Close()

	s, err = InitStorage(dir)
	require.NoError(t, err)
	defer s.Close()

	url, err := s.GetEndpoint(contestclient.COMMIT_URL_KEY)
	require.NoError(t, err)
	assert.Equal(t, "http://db/commit", url)
}

func TestSetEndpointsAllOrNothing(t *testing.T) {

	s := newTestStorage(t)

	err := s.SetEndpoints(map[string]string{
		contestclient.COMMIT_URL_KEY: "http://db/commit",
		"BOGUS":                      "x",
	})
	assert.True(t, errors.Is(err, ErrUnknownEndpointKey))

	url, err := s.GetEndpoint(contestclient.COMMIT_URL_KEY)
	require.NoError(t, err)
	assert.Equal(t, "", url)

	revision, err := s.GetEndpointsRevision()
	require.NoError(t, err)
	assert.Equal(t, 0, revision)

	require.NoError(t, s.SetEndpoints(map[string]string{
		contestclient.COMMIT_URL_KEY: "http://db/commit",
		contestclient.REVEAL_URL_KEY: "http://db/reveal",
	}))

	endpoints, err := s.GetEndpoints()
	require.NoError(t, err)
	assert.Len(t, endpoints, 2)

	// One transaction, one revision
	revision, err = s.GetEndpointsRevision()
	require.NoError(t, err)
	assert.Equal(t, 1, revision)

	require.NoError(t, s.SetEndpoints(map[string]string{contestclient.REVEAL_URL_KEY: ""}))
	endpoints, err = s.GetEndpoints()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{contestclient.COMMIT_URL_KEY: "http://db/commit"}, endpoints)
}
