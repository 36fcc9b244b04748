package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/gnana997/rendermap/pkg/depgraph"
	"github.com/gnana997/rendermap/pkg/pipeline"
	"github.com/gnana997/rendermap/pkg/util"
	"github.com/gnana997/rendermap/pkg/walker"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatTree = "tree"
)

// settings is the merged result of flags, config file and defaults.
type settings struct {
	root       string
	configPath string
	format     string
	order      pipeline.Options
	walk       walker.Options
	logger     *slog.Logger
}

// resolveSettings merges the command line with the config file. An
// explicitly set flag wins over the config file, which wins over the
// defaults. Every error it returns is a usage error.
func resolveSettings(cmd *cli.Command, stderr io.Writer, takesDir bool) (*settings, error) {
	root := "."
	if takesDir {
		if cmd.Args().Len() > 1 {
			return nil, usageErr(fmt.Errorf("expected at most one directory, got %d arguments", cmd.Args().Len()))
		}
		if dir := cmd.Args().First(); dir != "" {
			root = dir
		}
	}
	root, err := checkRoot(root)
	if err != nil {
		return nil, usageErr(err)
	}

	cfg, cfgPath, err := loadConfig(cmd.String("config"), root)
	if err != nil {
		return nil, usageErr(err)
	}
	if cfg == nil {
		cfg = &FileConfig{}
	}

	s := &settings{
		root:       root,
		configPath: cfgPath,
		order:      pipeline.DefaultOptions(),
		walk:       walker.DefaultOptions(),
	}

	switch {
	case cmd.IsSet("topo"):
		if cmd.Bool("topo") {
			s.order.Mode = depgraph.ModeTopological
		}
	case cfg.Order != "":
		mode, err := depgraph.ParseMode(cfg.Order)
		if err != nil {
			return nil, usageErr(err)
		}
		s.order.Mode = mode
	}

	policy, err := depgraph.ParseCyclePolicy(pick(cmd, "cycle-policy", cfg.CyclePolicy))
	if err != nil {
		return nil, usageErr(err)
	}
	s.order.CyclePolicy = policy

	s.format = pick(cmd, "format", cfg.Format)
	switch s.format {
	case formatText, formatJSON, formatTree:
	default:
		return nil, usageErr(fmt.Errorf("unknown format %q (want text, json or tree)", s.format))
	}

	switch {
	case cmd.IsSet("include"):
		s.walk.Include = cmd.StringSlice("include")
	case len(cfg.Include) > 0:
		s.walk.Include = cfg.Include
	}
	switch {
	case cmd.IsSet("exclude"):
		s.walk.Exclude = cmd.StringSlice("exclude")
	case len(cfg.Exclude) > 0:
		s.walk.Exclude = cfg.Exclude
	}
	switch {
	case cmd.IsSet("workers"):
		s.walk.Workers = int(cmd.Int("workers"))
	case cfg.Workers > 0:
		s.walk.Workers = cfg.Workers
	}
	if s.walk.Workers < 0 {
		return nil, usageErr(fmt.Errorf("workers must not be negative, got %d", s.walk.Workers))
	}
	if err := walker.ValidatePatterns(s.walk); err != nil {
		return nil, usageErr(err)
	}

	level, err := util.ParseLogLevel(pick(cmd, "log-level", cfg.LogLevel))
	if err != nil {
		return nil, usageErr(err)
	}
	logFormat, err := util.ParseLogFormat(pick(cmd, "log-format", cfg.LogFormat))
	if err != nil {
		return nil, usageErr(err)
	}
	s.logger = util.NewLogger(util.LoggerConfig{
		Level:  level,
		Format: logFormat,
		Output: stderr,
	})
	if s.configPath != "" {
		s.logger.Debug("loaded config", "path", s.configPath)
	}

	return s, nil
}

// pick returns the flag value when the flag was given, else the config
// value when present, else the flag default.
func pick(cmd *cli.Command, flag, fromConfig string) string {
	if !cmd.IsSet(flag) && fromConfig != "" {
		return fromConfig
	}
	return cmd.String(flag)
}

// checkRoot resolves dir to an absolute path and checks that it is a
// directory.
func checkRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", walker.ErrInvalidRoot, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", walker.ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", walker.ErrInvalidRoot, dir)
	}
	return abs, nil
}
