package receipt

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var labelPattern = regexp.MustCompile(`^RCPT-[0-9A-F]+$`)

func TestGeneratorFormat(t *testing.T) {
	gen := NewGenerator("", nil)
	label := gen.Next()
	assert.Regexp(t, labelPattern, label)
}

func TestGeneratorUniqueUnderFrozenClock(t *testing.T) {
	frozen := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator("RCPT", func() time.Time { return frozen })

	seen := map[string]struct{}{}
	for i := 0; i < 200; i++ {
		seen[gen.Next()] = struct{}{}
	}
	// 4 hex chars of entropy; collisions in 200 draws are possible but rare
	assert.Greater(t, len(seen), 190)
}

func TestGeneratorCustomPrefix(t *testing.T) {
	gen := NewGenerator(" POS ", nil)
	assert.Regexp(t, regexp.MustCompile(`^POS-[0-9A-F]+$`), gen.Next())
}
