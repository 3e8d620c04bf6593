package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beautycontest/contestclient"
)

const sampleConfig = `
# Beauty contest endpoints
COMMIT_URL = https://api.example.org/commit
REVEAL_URL="https://api.example.org/reveal?token=a=b"

not a pair
EXTRA=
`

func TestParse(t *testing.T) {

	c, err := Parse(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.org/commit", c.Get("COMMIT_URL"))
	assert.Equal(t, "https://api.example.org/reveal?token=a=b", c.Get("REVEAL_URL"))
	assert.Equal(t, "", c.Get("EXTRA"))
	assert.Equal(t, "", c.Get("not a pair"))
	assert.ElementsMatch(t, []string{"COMMIT_URL", "REVEAL_URL", "EXTRA"}, c.Keys())

	assert.Equal(t, contestclient.Endpoints{
		CommitURL: "https://api.example.org/commit",
		RevealURL: "https://api.example.org/reveal?token=a=b",
	}, c.Endpoints())
}

func TestMissingKeyLeavesPhaseEmpty(t *testing.T) {

	c, err := Parse(strings.NewReader("REVEAL_URL=http://r\n"))
	require.NoError(t, err)

	e := c.Endpoints()
	assert.Equal(t, "", e.CommitURL)
	assert.Equal(t, "http://r", e.RevealURL)
}

func TestLoad(t *testing.T) {

	path := filepath.Join(t.TempDir(), DEFAULT_CONFIG_FILE)
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.org/commit", c.Endpoints().CommitURL)
}

func TestLoadMissingFile(t *testing.T) {

	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestMerge(t *testing.T) {

	base := New(map[string]string{
		"COMMIT_URL": "http://file/commit",
		"REVEAL_URL": "http://file/reveal",
	})

	merged := base.Merge(map[string]string{
		"COMMIT_URL": "http://db/commit",
		"REVEAL_URL": "",
	})

	assert.Equal(t, "http://db/commit", merged.Get("COMMIT_URL"))
	assert.Equal(t, "http://file/reveal", merged.Get("REVEAL_URL"))

	// Base untouched
	assert.Equal(t, "http://file/commit", base.Get("COMMIT_URL"))
}
