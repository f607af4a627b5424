package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/google/uuid"

	"paxos/paxosconf"
)

// loadConfig resolves paxos.conf and, if --show-config was set, prints
// it as YAML and signals the caller to stop (via the second return
// value).
func loadConfig() (*paxosconf.Config, bool, error) {
	path := configPath
	if path == "" {
		path = paxosconf.DefaultPath
	}
	cfg, err := paxosconf.Load(path)
	if err != nil {
		return nil, false, err
	}
	if showConfig {
		fmt.Print(cfg.DebugYAML())
		return cfg, true, nil
	}
	return cfg, false, nil
}

// newLogger builds the role's diagnostic logger. Non-verbose roles log
// nothing but still carry a configured logger so role code never needs
// a nil check; verbose roles get a run-id tag for correlating log lines
// across a multi-process run.
func newLogger(role string, id int) *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	runID := uuid.New().String()[:8]
	prefix := fmt.Sprintf("%s[%d](%s) ", role, id, runID)
	return log.New(os.Stderr, prefix, log.LstdFlags)
}

// parseID parses the positional <id> argument.
func parseID(arg string) (int, error) {
	n, err := strconv.ParseUint(arg, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", arg, err)
	}
	return int(n), nil
}
