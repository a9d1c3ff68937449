package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navstack/internal/config"
	"github.com/vango-dev/navstack/internal/templates"
)

func (c *cli) initCmd() *cobra.Command {
	var (
		template string
		pkgName  string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a route package and navgen.yaml",
		Long: `Create navgen.yaml and a small route package in the working directory,
then generate its route table.

Templates:
  ` + strings.Join(templates.List(), ", ") + `

Examples:
  navgen init
  navgen init --dir internal/screens --template results`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := templates.Get(template)
			if err != nil {
				return c.report(err)
			}
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "." {
				dir = ""
			}
			output, _ := cmd.Flags().GetString("output")
			funcName, _ := cmd.Flags().GetString("func")

			files, err := tmpl.Create(wd, templates.Config{
				Dir:     dir,
				Package: pkgName,
				Output:  output,
				Func:    funcName,
			})
			if err != nil {
				return c.report(err)
			}
			for _, f := range files {
				rel, err := filepath.Rel(wd, f)
				if err != nil {
					rel = f
				}
				c.info("created %s", rel)
			}

			cfg, err := config.Load(wd, cmd.Flags())
			if err != nil {
				return c.report(err)
			}
			return c.report(c.runGen(cfg))
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "minimal", "scaffold template ("+strings.Join(templates.List(), ", ")+")")
	cmd.Flags().StringVar(&pkgName, "package", "", "package name (default: last element of --dir)")
	return cmd
}
