package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func (c *cli) versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(c.out, version)
				return
			}
			fmt.Fprintf(c.out, "  Version:    %s\n", version)
			fmt.Fprintf(c.out, "  Commit:     %s\n", commit)
			fmt.Fprintf(c.out, "  Built:      %s\n", date)
			fmt.Fprintf(c.out, "  Go version: %s\n", runtime.Version())
			fmt.Fprintf(c.out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	return cmd
}
