// Package roomcode generates the short codes players type to join a room.
package roomcode

import (
	"crypto/rand"
	"math/big"
)

// Alphabet excludes 0/O, 1/I/L and vowels that spell words, so codes
// survive being read out loud.
const alphabet = "23456789BCDFGHJKMNPQRSTVWXZ"

// Length is the number of characters in a room code.
const Length = 6

// RandSource supplies randomness for code generation. Tests inject a
// deterministic source.
type RandSource interface {
	Intn(n int) int
}

// Generator produces room codes from a configurable randomness source.
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a generator. A nil source falls back to crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new room code with crypto/rand randomness.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new room code using the generator's source.
func (g *Generator) Generate() string {
	buf := make([]byte, Length)
	for i := range buf {
		buf[i] = alphabet[g.intn(len(alphabet))]
	}
	return string(buf)
}

func (g *Generator) intn(n int) int {
	if g.randSource != nil {
		return g.randSource.Intn(n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand failing means the platform has no entropy source.
		panic(err)
	}
	return int(v.Int64())
}

// Valid reports whether s is a well-formed room code.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		found := false
		for j := 0; j < len(alphabet); j++ {
			if s[i] == alphabet[j] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
