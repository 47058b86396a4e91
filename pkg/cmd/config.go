package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tinyzimmer/imgfetch/pkg/log"
	"github.com/tinyzimmer/imgfetch/pkg/types"
)

const envPrefix = "IMGFETCH"

// configKeys maps config file keys to the flags that set them.
var configKeys = map[string]string{
	"images":          "images",
	"file":            "file",
	"path":            "path",
	"extension":       "extension",
	"redownload":      "redownload",
	"runtime":         "runtime",
	"runtime_bin":     "runtime-bin",
	"pull_policy":     "pull-policy",
	"platform":        "platform",
	"inspect_timeout": "inspect-timeout",
	"report":          "report",
	"cache_dir":       "cache-dir",
	"verbose":         "verbose",
}

// loadConfig merges flags, environment and the optional config file, in that
// order of precedence. Positional arguments are added to the images.
func loadConfig(cmd *cobra.Command, args []string) (*types.Config, error) {
	v := viper.New()
	for key, flag := range configKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, fmt.Errorf("could not bind flag %q: %w", flag, err)
		}
	}
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := readConfigFile(v, cfgFile); err != nil {
		return nil, err
	}

	conf := &types.Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("error unmarshalling config '%v': %w", v.ConfigFileUsed(), err)
	}
	conf.Images = append(conf.Images, args...)
	if conf.Verbose {
		log.Verbose = true
	}
	if err := conf.SetDefaults().Validate(); err != nil {
		return nil, err
	}
	log.Debugf("Resolved configuration: %+v\n", *conf)
	return conf, nil
}

// readConfigFile reads an explicitly given config file, or the first imgfetch.yaml
// found in the current directory or ~/.imgfetch. Only an explicit file has to exist.
func readConfigFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".imgfetch"))
		}
		v.SetConfigName("imgfetch")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			log.Debug("No config file found, using flags and environment only")
			return nil
		}
		return fmt.Errorf("error reading config '%v': %w", v.ConfigFileUsed(), err)
	}
	log.Debug("Using config file:", v.ConfigFileUsed())
	return nil
}

func runtimeKindStrings() []string {
	out := make([]string, len(types.RuntimeKinds))
	for i, k := range types.RuntimeKinds {
		out[i] = string(k)
	}
	return out
}

func pullPolicyStrings() []string {
	out := make([]string, len(types.PullPolicies))
	for i, p := range types.PullPolicies {
		out[i] = string(p)
	}
	return out
}
