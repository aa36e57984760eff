package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "REORGSCOPE"

// Config holds the settings shared by every subcommand.
type Config struct {
	LogLevel        string
	Strict          bool
	RPCURL          string
	RPCMaxRetries   int
	RPCRetryBackoff time.Duration
	MetricsFile     string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}
	return fromViper(v), nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	v.SetDefault("strict", false)
	v.SetDefault("rpc-max-retries", 3)
	v.SetDefault("rpc-retry-backoff", 500*time.Millisecond)
	v.SetDefault("out", "./data/reorgs.jsonl")
	v.SetDefault("summary-out", "./data/validators.jsonl")
	v.SetDefault("batch-size", 500)
	v.SetDefault("chain", "bsc")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		LogLevel:        v.GetString("log-level"),
		Strict:          v.GetBool("strict"),
		RPCURL:          strings.TrimSpace(v.GetString("rpc")),
		RPCMaxRetries:   v.GetInt("rpc-max-retries"),
		RPCRetryBackoff: v.GetDuration("rpc-retry-backoff"),
		MetricsFile:     v.GetString("metrics-file"),
	}
}
