package scheme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDimension(t *testing.T) {
	cases := []struct {
		in       string
		fallback int
		max      int
		want     int
	}{
		{"12", 10, 0, 12},
		{"  7", 10, 0, 7},
		{"+3", 10, 0, 3},
		{"12abc", 10, 0, 12},
		{"3.7", 10, 0, 3},
		{"", 10, 0, 10},
		{"abc", 15, 0, 15},
		{"0", 10, 0, 10},
		{"-5", 10, 0, 10},
		{"99999999999", 10, 0, 10},
		{"50", 10, 50, 50},
		{"51", 10, 50, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveDimension(tc.in, tc.fallback, tc.max), "input %q", tc.in)
	}
}
