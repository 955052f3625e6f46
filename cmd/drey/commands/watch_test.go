package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWatchArgs(t *testing.T) {
	t.Run("wait without a board is rejected", func(t *testing.T) {
		err := validateWatchArgs("", 30*time.Second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "board name")
	})

	t.Run("wait with a board is accepted", func(t *testing.T) {
		assert.NoError(t, validateWatchArgs("sprint-12", 30*time.Second))
	})

	t.Run("watching without wait never needs a board", func(t *testing.T) {
		assert.NoError(t, validateWatchArgs("", 0))
	})
}

func TestWatchWaitFlag(t *testing.T) {
	flag := watchCmd.Flags().Lookup("wait")
	require.NotNil(t, flag)
	assert.Equal(t, "0s", flag.DefValue)
}
