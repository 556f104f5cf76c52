package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "PAN_DEMO"

// FlagKeys maps command line flags onto configuration keys.
var FlagKeys = map[string]string{
	"config-file":      "orchestrator.config_file",
	"interactive-eula": "controller.interactive_eula",
	"log-level":        "log_level",
	"log-format":       "log_format",
	"terraform-dir":    "terraform.dir",
	"journal":          "journal.path",
}

// Load builds the configuration from, by increasing precedence, the defaults,
// the optional settings file, PAN_DEMO_* environment variables and the flags
// that were set.
func Load(settingsFile string, flags *pflag.FlagSet) (*Configuration, error) {
	cfg := NewConfigurationWithOptionsAndDefaults()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range keys() {
		// AutomaticEnv only resolves keys viper already knows about.
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if settingsFile != "" {
		v.SetConfigFile(settingsFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", settingsFile, err)
		}
	}

	if flags != nil {
		for flag, key := range FlagKeys {
			f := flags.Lookup(flag)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return cfg, nil
}

func keys() []string {
	return []string{
		"controller.admin_user",
		"controller.admin_password",
		"controller.interactive_eula",
		"controller.poll_interval",
		"controller.retry_interval",
		"controller.retry_max_elapsed",
		"controller.ready_timeout",
		"controller.license_settle_wait",
		"terraform.dir",
		"terraform.vars_file",
		"terraform.exec_path",
		"orchestrator.config_file",
		"journal.path",
		"log_format",
		"log_level",
	}
}
