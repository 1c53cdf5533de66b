// Package config resolves the sorting rules for a run. Values come from, in
// increasing priority: a .nis.yaml file found next to or above the processed
// path, the NIS_ROOTS / NIS_GROUPS environment variables (a .env file in the
// working directory is loaded first) and command-line flags.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	errmsg "github.com/siyuan-infoblox/nice-import-sorting/pkg/errors"
	"github.com/siyuan-infoblox/nice-import-sorting/pkg/importsort"
	"github.com/siyuan-infoblox/nice-import-sorting/pkg/utils"
)

const (
	FileName  = ".nis.yaml"
	EnvRoots  = "NIS_ROOTS"
	EnvGroups = "NIS_GROUPS"
)

// File is the layout of the config file
type File struct {
	Roots  []string `yaml:"roots"`
	Groups []string `yaml:"groups"`
}

// LoadOptions describes where configuration is looked up
type LoadOptions struct {
	Target     string   // processed file or directory; the config file search starts here
	ConfigPath string   // explicit config file, disables the search
	Roots      []string // --roots, nil when the flag was not given
	Groups     []string // --groups, nil when the flag was not given
}

// Config is the resolved configuration
type Config struct {
	Sorting importsort.Config
	Source  string // config file in use, empty if none
}

// Load resolves the configuration for opts
func Load(opts LoadOptions) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	path := opts.ConfigPath
	if path == "" && opts.Target != "" {
		path = utils.FindConfigFile(opts.Target, FileName)
	}
	if path != "" {
		file, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Sorting = importsort.Config{Roots: file.Roots, Groups: file.Groups}
		cfg.Source = path
	}

	if v, ok := os.LookupEnv(EnvRoots); ok {
		cfg.Sorting.Roots = splitList(v)
	}
	if v, ok := os.LookupEnv(EnvGroups); ok {
		cfg.Sorting.Groups = splitList(v)
	}

	if opts.Roots != nil {
		cfg.Sorting.Roots = opts.Roots
	}
	if opts.Groups != nil {
		cfg.Sorting.Groups = opts.Groups
	}

	cfg.Sorting = cfg.Sorting.Normalize()
	return cfg, nil
}

// ReadFile parses a config file
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errmsg.ErrMsgFailedToReadConfig)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "%s %s", errmsg.ErrMsgFailedToParseConfig, path)
	}
	return &file, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
