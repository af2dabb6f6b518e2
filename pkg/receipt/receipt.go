package receipt

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultPrefix = "RCPT"

// Generator hands out unique, human-legible receipt labels.
type Generator interface {
	Next() string
}

// Clock returns the current time; swapped out in tests.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// TimeGenerator builds labels as PREFIX-<microsecond clock in hex><4 random hex>.
type TimeGenerator struct {
	prefix string
	now    Clock
}

// NewGenerator returns a TimeGenerator; empty prefix falls back to DefaultPrefix.
func NewGenerator(prefix string, now Clock) *TimeGenerator {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if now == nil {
		now = SystemClock
	}
	return &TimeGenerator{prefix: prefix, now: now}
}

func (g *TimeGenerator) Next() string {
	stamp := strconv.FormatInt(g.now().UnixMicro(), 16)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	return g.prefix + "-" + strings.ToUpper(stamp+suffix)
}
