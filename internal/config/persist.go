package config

import "github.com/spf13/pflag"

// PersistConfig holds configuration for the persist command.
type PersistConfig struct {
	Config
	PGDSN     string
	BatchSize int
	Chain     string
}

// LoadPersist merges config file, environment variables, and flags into PersistConfig.
func LoadPersist(cfgFile string, flags *pflag.FlagSet) (PersistConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return PersistConfig{}, err
	}

	return PersistConfig{
		Config:    fromViper(v),
		PGDSN:     v.GetString("pg-dsn"),
		BatchSize: v.GetInt("batch-size"),
		Chain:     v.GetString("chain"),
	}, nil
}
