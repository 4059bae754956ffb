package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSettings_Defaults(t *testing.T) {
	for _, key := range []string{"MAX_LEN", "BATCH_SIZE", "EPOCHS", "DROPOUT", "SEED", "MALFORMED_ROWS", "KERNEL_SIZE"} {
		t.Setenv(key, "")
	}

	s, err := GetSettings()
	require.NoError(t, err)

	assert.Equal(t, 56, s.MaxLen)
	assert.Equal(t, 32, s.BatchSize)
	assert.Equal(t, 10, s.Epochs)
	assert.Equal(t, 60, s.Filters)
	assert.Equal(t, 3, s.KernelSize)
	assert.Equal(t, 2, s.PoolSize)
	assert.Equal(t, 70, s.HiddenDim)
	assert.InDelta(t, 0.25, s.Dropout, 1e-12)
	assert.Equal(t, int64(1337), s.Seed)
	assert.Equal(t, RowPolicyFail, s.MalformedRows)
}

func TestGetSettings_Overrides(t *testing.T) {
	t.Setenv("MAX_LEN", "40")
	t.Setenv("EPOCHS", "2")
	t.Setenv("MALFORMED_ROWS", "skip")
	t.Setenv("VALKEY_TLS", "true")
	t.Setenv("FORCE_REBUILD", "true")

	s, err := GetSettings()
	require.NoError(t, err)

	assert.Equal(t, 40, s.MaxLen)
	assert.Equal(t, 2, s.Epochs)
	assert.Equal(t, RowPolicySkip, s.MalformedRows)
	assert.True(t, s.ValkeyTLS)
	assert.True(t, s.ForceRebuild)
}

func TestGetSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"non numeric max len", "MAX_LEN", "abc", "MAX_LEN must be an integer"},
		{"negative epochs", "EPOCHS", "-1", "EPOCHS must be positive"},
		{"dropout too large", "DROPOUT", "1.5", "DROPOUT must be in [0, 1)"},
		{"unknown row policy", "MALFORMED_ROWS", "ignore", "MALFORMED_ROWS must be"},
		{"bad seed", "SEED", "x", "SEED must be an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := GetSettings()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
