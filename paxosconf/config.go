// Package paxosconf parses paxos.conf, the static membership file that
// maps each of the four roles to a multicast group address. Role code
// only ever sees a resolved Config.
package paxosconf

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file name, resolved relative to the
// process's working directory.
const DefaultPath = "paxos.conf"

var requiredGroups = []string{"clients", "proposers", "acceptors", "learners"}

// Config holds the resolved multicast endpoint for each role group.
type Config struct {
	Clients   *net.UDPAddr `yaml:"clients"`
	Proposers *net.UDPAddr `yaml:"proposers"`
	Acceptors *net.UDPAddr `yaml:"acceptors"`
	Learners  *net.UDPAddr `yaml:"learners"`
}

// Group returns the resolved address for a role group name.
func (c *Config) Group(name string) (*net.UDPAddr, error) {
	switch name {
	case "clients":
		return c.Clients, nil
	case "proposers":
		return c.Proposers, nil
	case "acceptors":
		return c.Acceptors, nil
	case "learners":
		return c.Learners, nil
	default:
		return nil, fmt.Errorf("paxosconf: unknown group %q", name)
	}
}

// DebugYAML renders the resolved configuration as YAML for the
// --show-config diagnostic flag. It is not part of the wire contract.
func (c *Config) DebugYAML() string {
	out, err := yaml.Marshal(struct {
		Clients   string `yaml:"clients"`
		Proposers string `yaml:"proposers"`
		Acceptors string `yaml:"acceptors"`
		Learners  string `yaml:"learners"`
	}{
		Clients:   c.Clients.String(),
		Proposers: c.Proposers.String(),
		Acceptors: c.Acceptors.String(),
		Learners:  c.Learners.String(),
	})
	if err != nil {
		return fmt.Sprintf("# paxosconf: failed to render config: %v\n", err)
	}
	return string(out)
}

// Load reads and validates path, a whitespace-separated
// "<name> <ipv4-multicast-address> <port>" entry per line. Every entry
// in requiredGroups must be present and must resolve to an IPv4
// multicast address.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("paxosconf: open %s: %w", path, err)
	}
	defer f.Close()

	groups := make(map[string]*net.UDPAddr)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("paxosconf: %s:%d: expected \"<name> <address> <port>\", got %q", path, lineNo, line)
		}
		name, addrStr, portStr := fields[0], fields[1], fields[2]

		ip := net.ParseIP(addrStr).To4()
		if ip == nil {
			return nil, fmt.Errorf("paxosconf: %s:%d: %q is not an IPv4 address", path, lineNo, addrStr)
		}
		if !ip.IsMulticast() {
			return nil, fmt.Errorf("paxosconf: %s:%d: %q is not a multicast address", path, lineNo, addrStr)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("paxosconf: %s:%d: %q is not a valid port", path, lineNo, portStr)
		}

		groups[name] = &net.UDPAddr{IP: ip, Port: port}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("paxosconf: read %s: %w", path, err)
	}

	for _, name := range requiredGroups {
		if _, ok := groups[name]; !ok {
			return nil, fmt.Errorf("paxosconf: %s: missing required entry %q", path, name)
		}
	}

	return &Config{
		Clients:   groups["clients"],
		Proposers: groups["proposers"],
		Acceptors: groups["acceptors"],
		Learners:  groups["learners"],
	}, nil
}
