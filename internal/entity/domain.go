package entity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound marks lookups of proposals or records that do not exist.
var ErrNotFound = errors.New("not found")

// Domain names an independent entity keyspace.
type Domain string

const (
	Players     Domain = "players"
	Tournaments Domain = "tournaments"
)

// Domains lists every supported domain in display order.
func Domains() []Domain {
	return []Domain{Players, Tournaments}
}

// ParseDomain accepts the plural, singular, and short spellings used on the
// command line.
func ParseDomain(value string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "players", "player", "p":
		return Players, nil
	case "tournaments", "tournament", "t":
		return Tournaments, nil
	default:
		return "", fmt.Errorf("unknown domain %q (expected players or tournaments)", value)
	}
}

func (d Domain) String() string { return string(d) }

// Valid reports whether d is one of the supported domains.
func (d Domain) Valid() bool {
	return d == Players || d == Tournaments
}

// Pair binds an alias key to an entity id.
type Pair struct {
	Key string
	ID  int64
}
