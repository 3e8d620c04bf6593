package config

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"beautycontest/contestclient"
	"beautycontest/util"
)

const (
	DEFAULT_CONFIG_FILE = "info.txt"
)

// Config holds KEY=VALUE pairs read from the endpoint file.
type Config struct {
	values map[string]string
}

func New(values map[string]string) *Config {

	c := &Config{
		values: make(map[string]string, len(values)),
	}
	for k, v := range values {
		c.values[k] = v
	}

	return c
}

// Load reads path. A missing file returns an error wrapping os.ErrNotExist;
// callers may carry on with an empty Config, leaving both phases unavailable.
func Load(path string) (*Config, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open config file %s", path)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to parse config file %s", path)
	}

	log.WithFields(log.Fields{
		"File": path, "Keys": c.Keys(),
	}).Debug("Loaded config")

	return c, nil
}

// Parse reads KEY=VALUE lines. Blank lines and lines starting with # are
// skipped, lines without = are ignored, and only the first = splits.
// Values may be quoted.
func Parse(r io.Reader) (*Config, error) {

	c := New(nil)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		c.values[strings.TrimSpace(parts[0])] = util.StripQuote(parts[1])
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "Unable to read config")
	}

	return c, nil
}

func (c *Config) Get(key string) string {
	return c.values[key]
}

func (c *Config) Keys() []string {

	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}

	return keys
}

// Merge returns a new Config with overrides applied on top. Empty override
// values are ignored.
func (c *Config) Merge(overrides map[string]string) *Config {

	merged := New(c.values)
	for k, v := range overrides {
		if v != "" {
			merged.values[k] = v
		}
	}

	return merged
}

func (c *Config) Endpoints() contestclient.Endpoints {
	return contestclient.Endpoints{
		CommitURL: c.Get(contestclient.COMMIT_URL_KEY),
		RevealURL: c.Get(contestclient.REVEAL_URL_KEY),
	}
}
