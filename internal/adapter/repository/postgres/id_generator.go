package postgres

import (
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID-based IDs. IDs minted within the same
// millisecond are monotonic, so audit entries sort in write order.
type ULIDGenerator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy io.Reader
}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return newULIDGenerator(time.Now, ulid.Monotonic(ulid.DefaultEntropy(), 0))
}

func newULIDGenerator(now func() time.Time, entropy io.Reader) *ULIDGenerator {
	return &ULIDGenerator{now: now, entropy: entropy}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}
