package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/navstack/internal/errors"
	"github.com/vango-dev/navstack/pkg/routegen"
)

// route is the listing form of a scanned handler.
type route struct {
	Key          string `json:"key" yaml:"key"`
	Handler      string `json:"handler" yaml:"handler"`
	Presentation string `json:"presentation" yaml:"presentation"`
	Invocation   string `json:"invocation" yaml:"invocation"`
	Result       string `json:"result,omitempty" yaml:"result,omitempty"`
	Location     string `json:"location" yaml:"location"`
}

func routesOf(pkg *routegen.Package) []route {
	out := make([]route, len(pkg.Handlers))
	for i, h := range pkg.Handlers {
		out[i] = route{
			Key:          h.KeyType,
			Handler:      h.Name,
			Presentation: h.Presentation.String(),
			Invocation:   h.Invocation.String(),
			Result:       h.Result,
			Location:     fmt.Sprintf("%s:%d", h.File, h.Line),
		}
	}
	return out
}

func (c *cli) listCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "List the routes of the route package",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" && format != "yaml" {
				return c.report(errors.New("E143").WithDetail(fmt.Sprintf("%q is not one of table, json, yaml", format)))
			}
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return c.report(err)
			}
			b, err := c.generate(cfg)
			if err != nil {
				return c.report(err)
			}
			return c.printRoutes(format, routesOf(b.pkg))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json or yaml")
	return cmd
}

func (c *cli) printRoutes(format string, routes []route) error {
	switch format {
	case "json":
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(routes)
	case "yaml":
		enc := yaml.NewEncoder(c.out)
		defer enc.Close()
		return enc.Encode(routes)
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tHANDLER\tPRESENTATION\tINVOCATION\tRESULT")
	for _, r := range routes {
		result := r.Result
		if result == "" {
			result = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Key, r.Handler, r.Presentation, r.Invocation, result)
	}
	return tw.Flush()
}
