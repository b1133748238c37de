package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanizeDelta(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{26*time.Hour + 5*time.Minute, "1d 2h"},
		{3*time.Hour + 4*time.Minute + 9*time.Second, "3h 4m"},
		{5*time.Minute + 6*time.Second, "5m 6s"},
		{7 * time.Second, "7s"},
		{-90 * time.Second, "1m 30s"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HumanizeDelta(c.in))
	}
}
