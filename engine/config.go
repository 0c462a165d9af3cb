package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/mtrans"
)

const (
	DefaultConfigFile = ".mtrans.yaml"
	DefaultCacheDir   = ".mtrans-cache"
)

// Config is the project configuration file.
type Config struct {
	Name    string         `yaml:"name"`
	Options map[string]any `yaml:"options,omitempty"`
	// RuleFile names a rule set file, relative to the configuration file.
	RuleFile string          `yaml:"ruleFile,omitempty"`
	Rules    *mtrans.RuleSet `yaml:"ruleset,omitempty"`
	CacheDir string          `yaml:"cacheDir,omitempty"`

	dir string
}

// DefaultConfig is the starter configuration written by `mtrans init`.
func DefaultConfig() Config {
	return Config{
		Name:    "mtrans",
		Options: map[string]any{"decimalPlaces": 2},
		Rules: mtrans.NewRuleSet().
			Add("\\type{number}", "$normalize").
			Add("?+?", "%1 plus %2").
			Add("?-?", "%1 minus %2").
			Add("?", "%%"),
		CacheDir: DefaultCacheDir,
	}
}

// LoadConfig reads a configuration file.
func LoadConfig(configurationPath string) (Config, error) {
	var config Config

	f, err := os.Open(configurationPath)
	if err != nil {
		return config, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return config, fmt.Errorf("%s: %w", configurationPath, err)
	}
	config.dir = filepath.Dir(configurationPath)
	return config, nil
}

// options returns the translate options with the rule set resolved.
func (c Config) options() (map[string]any, error) {
	opts := make(map[string]any, len(c.Options)+1)
	for k, v := range c.Options {
		opts[k] = v
	}

	rs := c.Rules
	if c.RuleFile != "" {
		if rs != nil {
			return nil, fmt.Errorf("ruleFile and ruleset are mutually exclusive")
		}
		path := c.RuleFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.dir, path)
		}
		loaded, err := mtrans.LoadRules(path)
		if err != nil {
			return nil, err
		}
		rs = loaded
	}
	if rs != nil {
		if _, ok := opts["rules"]; ok {
			return nil, fmt.Errorf("rules given both as an option and as a rule set")
		}
		opts["rules"] = rs
	}
	return opts, nil
}
