package utilities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSnowflakeID_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewSnowflakeID()
		require.NotEmpty(t, id)
		require.LessOrEqual(t, len(id), 32)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestNewKSUID(t *testing.T) {
	a, b := NewKSUID(), NewKSUID()
	require.Len(t, a, 27)
	require.NotEqual(t, a, b)
}

func TestNodeIDFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int64
	}{
		{name: "unset", env: "", want: 1},
		{name: "valid", env: "42", want: 42},
		{name: "not a number", env: "abc", want: 1},
		{name: "out of range", env: "5000", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SNOWFLAKE_NODE", tt.env)
			require.Equal(t, tt.want, nodeIDFromEnv())
		})
	}
}
