package common

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Endpoint
// --------------------------------------------------------------------------

// Default protocol settings. Version 9 corresponds to Hadoop 2.2 and later;
// older distributions speak 7 or 8 and have to be configured explicitly per
// endpoint.
const (
	DefaultVersion byte = 9
	DefaultPort    int  = 8020
)

// Endpoint identifies one NameNode address together with the Hadoop RPC
// protocol version it speaks. Endpoints are immutable once configured; the
// order of the configured list defines failover priority.
type Endpoint struct {
	Host    string
	Port    int
	Version byte
}

// Addr returns the host:port dial address of the endpoint.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s (v%d)", e.Addr(), e.Version)
}

// ParseEndpoint parses "host", "host:port" or "host:port:version" into an
// Endpoint, filling in defaults for the missing parts. IPv6 literals must be
// bracketed, e.g. "[::1]:8020:9". The version suffix exists because
// heterogeneous clusters run NameNodes with different protocol versions
// during upgrades.
func ParseEndpoint(s string) (Endpoint, error) {
	ep := Endpoint{Port: DefaultPort, Version: DefaultVersion}
	s = strings.TrimSpace(s)

	host := s
	var suffix string
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return Endpoint{}, fmt.Errorf("unterminated IPv6 literal in endpoint %q", s)
		}
		host = s[1:end]
		suffix = s[end+1:]
		if suffix != "" {
			if !strings.HasPrefix(suffix, ":") {
				return Endpoint{}, fmt.Errorf("invalid endpoint %q, expected [host][:port[:version]]", s)
			}
			suffix = suffix[1:]
		}
	} else if idx := strings.IndexByte(s, ':'); idx >= 0 {
		host = s[:idx]
		suffix = s[idx+1:]
	}

	if host == "" {
		return Endpoint{}, fmt.Errorf("empty host in endpoint %q", s)
	}
	ep.Host = host

	if suffix == "" {
		return ep, nil
	}
	parts := strings.Split(suffix, ":")
	if len(parts) > 2 {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q, expected host[:port[:version]]", s)
	}
	if len(parts) == 2 {
		v, err := strconv.ParseUint(parts[1], 10, 8)
		if err != nil {
			return Endpoint{}, fmt.Errorf("invalid protocol version in endpoint %q: %v", s, err)
		}
		ep.Version = byte(v)
	}
	p, err := strconv.Atoi(parts[0])
	if err != nil || p <= 0 || p > 65535 {
		return Endpoint{}, fmt.Errorf("invalid port in endpoint %q", s)
	}
	ep.Port = p

	return ep, nil
}

// ParseEndpoints parses a comma-separated endpoint list, preserving order.
func ParseEndpoints(s string) ([]Endpoint, error) {
	var endpoints []Endpoint
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		ep, err := ParseEndpoint(part)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, ep)
	}
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no endpoints provided")
	}
	return endpoints, nil
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all parameters needed to talk to a set of NameNodes.
// It is read-only once constructed; the endpoint resolver owns it.
type ClientConfig struct {
	// Endpoints lists the configured NameNodes in failover order.
	Endpoints []Endpoint

	// EffectiveUser is the username sent in the connection context.
	// If empty, the current OS user is used.
	EffectiveUser string

	// TimeoutSecond bounds a single RPC invocation. 0 disables the
	// timeout.
	TimeoutSecond int

	// SkipTrash makes delete operations remove paths permanently instead
	// of moving them into the user's trash directory.
	SkipTrash bool
}

// User returns the effective user, falling back to the current OS user.
func (c *ClientConfig) User() string {
	if c.EffectiveUser != "" {
		return c.EffectiveUser
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Effective User", c.User())
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Skip Trash", strconv.FormatBool(c.SkipTrash))

	addSection("NameNodes")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint.String())
	}

	return sb.String()
}
