package fiscal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		date     time.Time
		expected string
	}{
		{time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), "2024-2025"},
		{time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC), "2023-2024"},
		{time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), "2024-2025"},
		{time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), "2024-2025"},
		{time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC), "2024-2025"},
		{time.Date(2023, time.July, 4, 12, 30, 0, 0, time.UTC), "2023-2024"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, Resolve(tc.date), "date %s", tc.date)
	}
}

func TestCurrentMatchesResolve(t *testing.T) {
	assert.Equal(t, Resolve(time.Now()), Current())
}
