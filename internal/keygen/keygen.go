// Package keygen generates license keys and supplies the clock used to compute
// expiry dates.
package keygen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	DefaultPrefix = "LIC-"
	DefaultSize   = 6
)

// Generator produces opaque license keys.
type Generator interface {
	Generate() (string, error)
}

// RandomGenerator renders Size random bytes as uppercase hex behind Prefix.
type RandomGenerator struct {
	Prefix string
	Size   int
}

// NewRandomGenerator returns the default LIC-XXXXXXXXXXXX generator.
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{Prefix: DefaultPrefix, Size: DefaultSize}
}

func (g *RandomGenerator) Generate() (string, error) {
	size := g.Size
	if size <= 0 {
		size = DefaultSize
	}
	entropy := make([]byte, size)
	if _, err := rand.Read(entropy); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}
	return g.Prefix + strings.ToUpper(hex.EncodeToString(entropy)), nil
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func() (string, error)

func (f GeneratorFunc) Generate() (string, error) { return f() }
