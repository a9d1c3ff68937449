package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navstack/internal/config"
	"github.com/vango-dev/navstack/internal/errors"
	"github.com/vango-dev/navstack/pkg/routegen"
)

// build is the result of one scan-and-generate pass.
type build struct {
	cfg  *config.Config
	pkg  *routegen.Package
	code []byte
}

// loadConfig reads the project configuration. An optional positional
// argument overrides the route directory, relative to the working directory.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.LoadFromWorkingDir(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return nil, err
		}
		cfg.Dir = dir
	}
	return cfg, nil
}

// generate scans the configured route package and renders its table.
func (c *cli) generate(cfg *config.Config) (*build, error) {
	dir := cfg.RoutesPath()
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return nil, errors.New("E140").WithDetail(dir + " is not a directory")
	}

	importPath := cfg.ImportPath
	if importPath == "" {
		var err error
		importPath, err = routegen.ResolveImportPath(dir)
		if err != nil {
			return nil, errors.New("E121").Wrap(err)
		}
	}

	c.logger.Debug("scanning route package", "dir", dir, "importPath", importPath)
	pkg, err := routegen.NewScanner(dir).
		WithImportPath(importPath).
		WithOutput(cfg.Output).
		Scan()
	if err != nil {
		return nil, err
	}
	c.logger.Debug("scan finished", "package", pkg.Name, "routes", len(pkg.Handlers))

	code, err := routegen.NewGenerator(pkg, cfg.Func).Generate()
	if err != nil {
		return nil, err
	}
	return &build{cfg: cfg, pkg: pkg, code: code}, nil
}

// write stores the generated table and reports whether the file changed.
func (b *build) write() (bool, error) {
	path := b.cfg.OutputPath()
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, b.code) {
		return false, nil
	}
	if err := os.WriteFile(path, b.code, 0o644); err != nil {
		return false, errors.New("E142").WithDetail(err.Error()).Wrap(err)
	}
	return true, nil
}

func (c *cli) genCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen [dir]",
		Short: "Generate the route table",
		Long: `Scan the route package and write its generated route table.

The output is deterministic: running it again produces identical output
unless the routes change, and an unchanged file is not rewritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return c.report(err)
			}
			return c.report(c.runGen(cfg))
		},
	}
}

func (c *cli) runGen(cfg *config.Config) error {
	c.info("Scanning %s...", cfg.RoutesPath())
	b, err := c.generate(cfg)
	if err != nil {
		return err
	}
	c.info("Found %d routes", len(b.pkg.Handlers))

	changed, err := b.write()
	if err != nil {
		return err
	}
	if !changed {
		c.success("%s is up to date", cfg.OutputPath())
		return nil
	}
	c.success("Generated %s", cfg.OutputPath())
	return nil
}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [dir]",
		Short: "Fail if the generated route table is out of date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return c.report(err)
			}
			b, err := c.generate(cfg)
			if err != nil {
				return c.report(err)
			}
			old, err := os.ReadFile(cfg.OutputPath())
			if err != nil || !bytes.Equal(old, b.code) {
				return c.report(errors.New("E141").WithDetail(cfg.OutputPath() + " differs from the generated route table"))
			}
			c.success("%s is up to date (%d routes)", cfg.OutputPath(), len(b.pkg.Handlers))
			return nil
		},
	}
}
