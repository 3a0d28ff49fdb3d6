package id

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/cleared-dev/bote/internal/model"
	"github.com/cleared-dev/bote/internal/store"
)

// DefaultMaxAttempts bounds the collision-retry loop.
const DefaultMaxAttempts = 20

// ErrIDGenerationExhausted is returned when every attempted suffix collided.
var ErrIDGenerationExhausted = errors.New("transaction ID generation exhausted")

// SuffixChecker reports whether a suffix is already taken.
type SuffixChecker interface {
	TransactionIDSuffixExists(ctx context.Context, suffix string) (bool, error)
}

// Generator builds collision-checked transaction IDs.
type Generator struct {
	checker     SuffixChecker
	maxAttempts int
	intN        func(n int) int
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxAttempts overrides DefaultMaxAttempts. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithRand replaces the random source; intN must return a value in [0, n).
func WithRand(intN func(n int) int) Option {
	return func(g *Generator) {
		g.intN = intN
	}
}

// NewGenerator creates a Generator backed by checker.
func NewGenerator(checker SuffixChecker, opts ...Option) *Generator {
	g := &Generator{
		checker:     checker,
		maxAttempts: DefaultMaxAttempts,
		intN:        rand.Intn,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a new ID for a transaction of type t made by the member
// with the given alias on date.
func (g *Generator) Generate(ctx context.Context, t model.TransactionType, alias string, date time.Time) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		suffix := g.randomSuffix()
		exists, err := g.checker.TransactionIDSuffixExists(ctx, suffix)
		if err != nil {
			if errors.Is(err, store.ErrUnavailable) {
				return "", fmt.Errorf("checking suffix %s: %w", suffix, err)
			}
			return "", fmt.Errorf("checking suffix %s: %w: %w", suffix, store.ErrUnavailable, err)
		}
		if !exists {
			return FormatTransactionID(t, alias, date, suffix), nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrIDGenerationExhausted, g.maxAttempts)
}

func (g *Generator) randomSuffix() string {
	var b strings.Builder
	b.Grow(suffixLen)
	for i := 0; i < suffixLen; i++ {
		b.WriteByte(suffixAlphabet[g.intN(len(suffixAlphabet))])
	}
	return b.String()
}
