package rlimit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetRLimit(t *testing.T) {
	// asking for very little never lowers the limit
	limit, err := SetRLimit(16)
	require.NoError(t, err)
	require.GreaterOrEqual(t, limit, uint64(16))
}
