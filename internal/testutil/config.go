package testutil

import (
	"testing"

	"github.com/lepinkainen/pokexcel/internal/config"
	"github.com/spf13/viper"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	DefaultMode        string
	TruncateBatch      bool
	SkipInvalidLines   bool
	SpreadsheetEnabled bool
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		DefaultMode:        config.DefaultMode,
		TruncateBatch:      config.TruncateBatch,
		SkipInvalidLines:   config.SkipInvalidLines,
		SpreadsheetEnabled: config.SpreadsheetEnabled,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.DefaultMode = state.DefaultMode
	config.TruncateBatch = state.TruncateBatch
	config.SkipInvalidLines = state.SkipInvalidLines
	config.SpreadsheetEnabled = state.SpreadsheetEnabled
}

// ResetConfig resets viper and the config package to defaults and restores
// the previous state when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()
	config.InitConfig()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}
