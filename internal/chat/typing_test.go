package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypingTracker(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)
	tr := NewTypingTracker(5 * time.Second)
	tr.now = func() time.Time { return now }

	tr.Set("g1", "u1", "Anna", true)
	now = now.Add(time.Second)
	tr.Set("g1", "u2", "Boris", true)
	tr.Set("g2", "u3", "Vera", true)

	typing := tr.Typing("g1", "")
	assert.Len(t, typing, 2)
	assert.Equal(t, "Anna", typing[0].UserName)
	assert.Equal(t, "Anna and Boris are typing", IndicatorText(typing))

	assert.Len(t, tr.Typing("g1", "u1"), 1)

	tr.Set("g1", "u2", "", false)
	assert.Equal(t, "Anna is typing", IndicatorText(tr.Typing("g1", "")))

	now = now.Add(10 * time.Second)
	assert.Empty(t, tr.Typing("g1", ""))
}

func TestIndicatorText(t *testing.T) {
	assert.Equal(t, "", IndicatorText(nil))
	assert.Equal(t, "Someone is typing", IndicatorText([]Typist{{UserID: "x"}}))
	assert.Equal(t, "Several people are typing", IndicatorText([]Typist{{}, {}, {}}))
}
