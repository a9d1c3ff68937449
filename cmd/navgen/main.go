// Command navgen generates route tables from //nav:route directives.
package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vango-dev/navstack/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	successMark = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("✓")
	warnMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render("⚠")
	errorMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("✗")
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the output streams shared by every subcommand.
type cli struct {
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut, logger: slog.New(slog.DiscardHandler)}
	var (
		verbose bool
		noColor bool
	)

	rootCmd := &cobra.Command{
		Use:   "navgen",
		Short: "Generate navigation route tables",
		Long: `navgen scans a Go package for functions marked with //nav:route and
writes the registry that maps each destination key type to its handler.

  //nav:route Profile
  func ProfileScreen(p Profile) tea.Model { ... }

  //nav:route *AskName modal
  func AskNameDialog(h *registry.Holder[*AskName]) tea.Model { ... }

Settings are read from navgen.json or navgen.yaml at the project root,
NAVGEN_* environment variables and flags, in that order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				errors.DisableColors()
			}
			if verbose {
				c.logger = slog.New(slog.NewTextHandler(c.errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.PersistentFlags()
	flags.String("dir", ".", "route package directory, relative to the project root")
	flags.StringP("output", "o", "", "generated file name (default routes_gen.go)")
	flags.String("func", "", "generated constructor name (default Routes)")
	flags.String("import-path", "", "import path of the route package (default from go.mod)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		c.initCmd(),
		c.genCmd(),
		c.checkCmd(),
		c.listCmd(),
		c.watchCmd(),
		c.versionCmd(),
	)
	return rootCmd
}

func (c *cli) success(format string, args ...any) {
	fmt.Fprintf(c.out, "%s %s\n", successMark, fmt.Sprintf(format, args...))
}

func (c *cli) info(format string, args ...any) {
	fmt.Fprintf(c.out, "  %s\n", fmt.Sprintf(format, args...))
}

func (c *cli) warn(format string, args ...any) {
	fmt.Fprintf(c.errOut, "%s %s\n", warnMark, fmt.Sprintf(format, args...))
}

// report prints err, expanding route build errors one by one, and returns
// it for cobra.
func (c *cli) report(err error) error {
	if err == nil {
		return nil
	}
	var ne *errors.NavError
	if stderrors.As(err, &ne) {
		errors.PrintError(c.errOut, ne)
		return err
	}
	list := errors.FromBuild(err)
	for _, e := range list {
		errors.PrintError(c.errOut, e)
	}
	if len(list) > 1 {
		fmt.Fprintf(c.errOut, "%s %d route build errors\n", errorMark, len(list))
	}
	return err
}
