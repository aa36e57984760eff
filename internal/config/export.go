package config

import "github.com/spf13/pflag"

// ExportConfig holds configuration for the export command.
type ExportConfig struct {
	Config
	Out        string
	SummaryOut string
}

// LoadExport merges config file, environment variables, and flags into ExportConfig.
func LoadExport(cfgFile string, flags *pflag.FlagSet) (ExportConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ExportConfig{}, err
	}

	return ExportConfig{
		Config:     fromViper(v),
		Out:        v.GetString("out"),
		SummaryOut: v.GetString("summary-out"),
	}, nil
}
