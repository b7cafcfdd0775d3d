package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (a *app) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [container...]",
		Short: "Show container details without unpacking",
		Long: `Show the scheme, protection and sizes of each container. The embedded
filename is shown for unprotected containers only; no password is asked.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.each(args, func(name string) error {
				info, err := a.inspectFile(name)
				if err != nil {
					return err
				}

				filename := info.Filename
				if info.Protected {
					filename = "(hidden, password protected)"
				}
				protected := "no"
				if info.Protected {
					protected = "yes"
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "Container:\t%s\n", name)
				fmt.Fprintf(w, "Scheme:\t%s\n", info.Scheme)
				fmt.Fprintf(w, "Protected:\t%s\n", protected)
				fmt.Fprintf(w, "Filename:\t%s\n", filename)
				fmt.Fprintf(w, "Payload:\t%s\n", humanize.Bytes(uint64(info.PayloadSize)))
				fmt.Fprintf(w, "Size:\t%s\n", humanize.Bytes(uint64(info.ContainerSize)))
				return w.Flush()
			})
		},
	}
}
