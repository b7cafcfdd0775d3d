package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (a *app) newUnpackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpack [container...]",
		Short: "Restore files from containers",
		Long: `Restore each container's file under its embedded name, next to the
container or into --out-dir. Protected containers ask for their password.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.each(args, func(name string) error {
				return a.unpackOne(cmd, name)
			})
		},
	}
}

func (a *app) unpackOne(cmd *cobra.Command, src string) error {
	a.log.Debugf("Unpacking %s", src)
	dst, size, err := a.unpackFile(src)
	if err != nil {
		return err
	}
	a.log.Infof("Unpacked %s into %s", src, dst)
	fmt.Fprintf(cmd.OutOrStdout(), "unpacked %s -> %s (%s)\n", src, dst, humanize.Bytes(uint64(size)))
	return nil
}
