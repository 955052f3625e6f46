package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeSpec(t *testing.T) {
	t.Run("RFC3339 timestamp", func(t *testing.T) {
		ms, err := ParseTimeSpec("2026-08-29T13:00:00Z")
		require.NoError(t, err)

		want := time.Date(2026, 8, 29, 13, 0, 0, 0, time.UTC).UnixMilli()
		assert.Equal(t, want, ms)
	})

	t.Run("duration is relative to now", func(t *testing.T) {
		before := time.Now().Add(-time.Hour).UnixMilli()
		ms, err := ParseTimeSpec("1h")
		require.NoError(t, err)
		after := time.Now().Add(-time.Hour).UnixMilli()

		assert.GreaterOrEqual(t, ms, before)
		assert.LessOrEqual(t, ms, after)
	})

	t.Run("empty spec is rejected", func(t *testing.T) {
		_, err := ParseTimeSpec("")
		assert.Error(t, err)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := ParseTimeSpec("next tuesday")
		assert.Error(t, err)
	})
}

func TestParseTimeRange(t *testing.T) {
	t.Run("both bounds", func(t *testing.T) {
		since, until, err := ParseTimeRange("2026-08-01T00:00:00Z", "2026-08-29T00:00:00Z")
		require.NoError(t, err)
		assert.Less(t, since, until)
	})

	t.Run("missing bounds are zero", func(t *testing.T) {
		since, until, err := ParseTimeRange("", "")
		require.NoError(t, err)
		assert.Zero(t, since)
		assert.Zero(t, until)
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		_, _, err := ParseTimeRange("2026-08-29T00:00:00Z", "2026-08-01T00:00:00Z")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--since must be before --until")
	})

	t.Run("bad since is reported with its flag", func(t *testing.T) {
		_, _, err := ParseTimeRange("nope", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --since")
	})
}
