// Package idgen derives student ids from a name and an age and resolves
// collisions against the ids already admitted to the repository.
package idgen

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	upperLetters       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	upperAlphanumerics = upperLetters + "0123456789"

	prefixLen     = 3
	randomLetters = 2
	minIDLen      = 5
	maxIDLen      = 10
	maxSuffix     = 99
	fallbackLen   = 8
)

// IDSet reports whether an id is already in use.
type IDSet interface {
	Exists(id string) bool
}

// IDSetFunc adapts a plain function to IDSet.
type IDSetFunc func(id string) bool

// Exists implements IDSet.
func (f IDSetFunc) Exists(id string) bool { return f(id) }

// Generator produces candidate ids. The zero value is not usable; construct
// with New.
type Generator struct {
	ids IDSet
	rnd *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand overrides the random source, used by tests for reproducible ids.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rnd = r
		}
	}
}

// WithSeed seeds a PCG source so the same inputs always yield the same ids.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// New builds a generator that checks uniqueness against ids. A nil ids treats
// every candidate as unused.
func New(ids IDSet, opts ...Option) *Generator {
	if ids == nil {
		ids = IDSetFunc(func(string) bool { return false })
	}
	now := uint64(time.Now().UnixNano())
	g := &Generator{ids: ids, rnd: rand.New(rand.NewPCG(now, now>>1))}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns an unused id built from up to three letters of name, the
// last two digits of age, and random uppercase letters.
func (g *Generator) Generate(name string, age int) string {
	return g.ensureUnique(g.Candidate(name, age))
}

// Candidate builds the base id without consulting the id set.
func (g *Generator) Candidate(name string, age int) string {
	var b strings.Builder
	b.WriteString(namePrefix(name))
	b.WriteString(agePart(age))
	b.WriteString(g.randomString(upperLetters, randomLetters))
	if b.Len() < minIDLen {
		b.WriteString(g.randomString(upperLetters, minIDLen-b.Len()))
	}
	return b.String()
}

func (g *Generator) ensureUnique(base string) string {
	if !g.ids.Exists(base) {
		return base
	}
	for suffix := 1; suffix <= maxSuffix; suffix++ {
		s := strconv.Itoa(suffix)
		head := base
		if keep := maxIDLen - len(s); len(head) > keep {
			head = head[:keep]
		}
		if id := head + s; !g.ids.Exists(id) {
			return id
		}
	}
	// every numeric suffix is taken; draw random ids until one is free
	for {
		if id := g.randomString(upperAlphanumerics, fallbackLen); !g.ids.Exists(id) {
			return id
		}
	}
}

func (g *Generator) randomString(alphabet string, n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alphabet[g.rnd.IntN(len(alphabet))]
	}
	return string(buf)
}

func namePrefix(name string) string {
	letters := make([]byte, 0, prefixLen)
	for i := 0; i < len(name) && len(letters) < prefixLen; i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
			letters = append(letters, c-'a'+'A')
		case c >= 'A' && c <= 'Z':
			letters = append(letters, c)
		}
	}
	return string(letters)
}

func agePart(age int) string {
	s := fmt.Sprintf("%02d", age)
	return s[len(s)-2:]
}
