// Package id generates the identifiers used across the interop bridge.
//
// All identifiers are prefixed ULIDs so they sort by creation time and are
// recognisable in logs:
//   - sess_*: a connected browser context (host session)
//   - ref_*:  an object reference the browser calls back through
//   - mod_*:  a module handle held by the browser runtime
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionID identifies a host session.
type SessionID string

// ObjectRefID identifies a host object reference.
type ObjectRefID string

// ModuleID identifies an imported browser module.
type ModuleID string

const (
	SessionPrefix   = "sess"
	ObjectRefPrefix = "ref"
	ModulePrefix    = "mod"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand, made monotonic so
// identifiers created within the same millisecond still sort.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0))
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewSessionID generates a session identifier.
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

// NewObjectRefID generates an object reference token.
func NewObjectRefID() ObjectRefID {
	return ObjectRefID(Default().GenerateWithPrefix(ObjectRefPrefix))
}

// NewModuleID generates a module handle.
func NewModuleID() ModuleID {
	return ModuleID(Default().GenerateWithPrefix(ModulePrefix))
}

func (id SessionID) String() string   { return string(id) }
func (id ObjectRefID) String() string { return string(id) }
func (id ModuleID) String() string    { return string(id) }

// Split separates a prefixed identifier into prefix and ULID.
func Split(s string) (prefix string, u ulid.ULID, err error) {
	prefix, rest, ok := strings.Cut(s, "_")
	if !ok {
		return "", ulid.ULID{}, fmt.Errorf("identifier %q has no prefix", s)
	}
	u, err = ulid.Parse(rest)
	if err != nil {
		return "", ulid.ULID{}, fmt.Errorf("identifier %q: %w", s, err)
	}
	return prefix, u, nil
}

// HasPrefix reports whether s is a well-formed identifier with prefix.
func HasPrefix(s, prefix string) bool {
	p, _, err := Split(s)
	return err == nil && p == prefix
}

// Timestamp extracts the creation time of a prefixed identifier.
func Timestamp(s string) (time.Time, error) {
	_, u, err := Split(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
