package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/genxdata/internal/config"
)

func TestConfig_BuildsValidConfig(t *testing.T) {
	cfg := Config(5,
		Spec("SERIES_STRATEGY", map[string]any{"start": 1}, "id"),
		Spec("UUID_STRATEGY", nil, "key"),
	)

	require.NoError(t, config.Validate(cfg))
	assert.Equal(t, "test", cfg.Name())
	assert.Equal(t, []string{"id", "key"}, cfg.ColumnNames())
}
