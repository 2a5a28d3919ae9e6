package config

import (
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// DefaultMode is used when the command line does not start with a mode keyword
	DefaultMode string
	// TruncateBatch controls whether a batch file is emptied after it has been read
	TruncateBatch bool
	// SkipInvalidLines drops unparseable batch lines with a warning instead of rejecting the file
	SkipInvalidLines bool
	// SpreadsheetEnabled can switch off the spreadsheet backend even when it is compiled in
	SpreadsheetEnabled bool
)

// SetDefaults registers the default configuration values with viper.
func SetDefaults() {
	viper.SetDefault("mode", "Excel")
	viper.SetDefault("batch.truncate", true)
	viper.SetDefault("batch.skip_invalid", false)
	viper.SetDefault("spreadsheet.enabled", true)
	viper.SetDefault("log.level", "info")
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	DefaultMode = viper.GetString("mode")
	TruncateBatch = viper.GetBool("batch.truncate")
	SkipInvalidLines = viper.GetBool("batch.skip_invalid")
	SpreadsheetEnabled = viper.GetBool("spreadsheet.enabled")
}

// SetDefaultMode sets the DefaultMode value
func SetDefaultMode(mode string) {
	DefaultMode = mode
}

// SetTruncateBatch sets the TruncateBatch flag
func SetTruncateBatch(truncate bool) {
	TruncateBatch = truncate
}
