package id

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"sync/atomic"
	"time"
)

const maxInboundLen = 64

// Generator creates opaque request identifiers.
type Generator interface {
	NewID() string
}

type RandomGenerator struct {
	size     int
	fallback atomic.Uint64
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{size: 8}
}

// NewID returns size random bytes hex encoded. If the system source fails it
// falls back to a clock based id, so callers never see an error.
func (g *RandomGenerator) NewID() string {
	buf := make([]byte, g.size)
	if _, err := rand.Read(buf); err != nil {
		seq := g.fallback.Add(1)
		return strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + strconv.FormatUint(seq, 36)
	}

	return hex.EncodeToString(buf)
}

// Valid reports whether an id supplied by a client can be echoed back as is.
func Valid(raw string) bool {
	if raw == "" || len(raw) > maxInboundLen {
		return false
	}
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
