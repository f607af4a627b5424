package paxosconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "paxos.conf")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConf(t, "clients 239.0.0.1 9001\nproposers 239.0.0.2 9002\nacceptors 239.0.0.3 9003\nlearners 239.0.0.4 9004\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "239.0.0.1", cfg.Clients.IP.String())
	assert.Equal(t, 9001, cfg.Clients.Port)
	assert.Equal(t, 9004, cfg.Learners.Port)
}

func TestLoadMissingRequiredEntry(t *testing.T) {
	path := writeConf(t, "clients 239.0.0.1 9001\nproposers 239.0.0.2 9002\nacceptors 239.0.0.3 9003\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "learners")
}

func TestLoadRejectsNonMulticastAddress(t *testing.T) {
	path := writeConf(t, "clients 10.0.0.1 9001\nproposers 239.0.0.2 9002\nacceptors 239.0.0.3 9003\nlearners 239.0.0.4 9004\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "multicast")
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	path := writeConf(t, "clients 239.0.0.1\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.conf"))
	assert.Error(t, err)
}

func TestGroupLookup(t *testing.T) {
	path := writeConf(t, "clients 239.0.0.1 9001\nproposers 239.0.0.2 9002\nacceptors 239.0.0.3 9003\nlearners 239.0.0.4 9004\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	g, err := cfg.Group("acceptors")
	require.NoError(t, err)
	assert.Equal(t, 9003, g.Port)

	_, err = cfg.Group("bogus")
	assert.Error(t, err)
}

func TestDebugYAMLContainsAllGroups(t *testing.T) {
	path := writeConf(t, "clients 239.0.0.1 9001\nproposers 239.0.0.2 9002\nacceptors 239.0.0.3 9003\nlearners 239.0.0.4 9004\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	out := cfg.DebugYAML()
	assert.Contains(t, out, "clients")
	assert.Contains(t, out, "9001")
}
