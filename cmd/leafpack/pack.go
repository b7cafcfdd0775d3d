package main

import (
	"fmt"

	"github.com/absfs/leafpack"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (a *app) newPackCmd() *cobra.Command {
	var protect bool

	cmd := &cobra.Command{
		Use:   "pack [file...]",
		Short: "Pack files into containers",
		Long: `Pack each file into <name>_packed.lpk next to it, or into --out-dir.

Examples:
  # Pack without a password
  leafpack pack report.pdf

  # Pack with a password into another directory
  leafpack pack -P -o ./vault report.pdf notes.txt

  # Non-interactive password and the dual-key scheme
  LEAFPACK_PASSWORD=hunter2 leafpack pack -P --scheme dual-key photo.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password *string
			if protect {
				pw, err := a.newPassword("Password")
				if err != nil {
					return err
				}
				password = &pw
				a.log.Debugf("Password fingerprint %02X", leafpack.PasswordFingerprint(pw))
			}
			return a.each(args, func(name string) error {
				return a.packOne(cmd, name, password)
			})
		},
	}

	cmd.Flags().BoolVarP(&protect, "password", "P", false, "protect the containers with a password")
	return cmd
}

func (a *app) packOne(cmd *cobra.Command, src string, password *string) error {
	a.log.Debugf("Packing %s (scheme %s, password %v)", src, a.codec.Scheme(), password != nil)
	dst, size, err := a.packFile(src, password)
	if err != nil {
		return err
	}
	a.log.Infof("Packed %s into %s", src, dst)
	fmt.Fprintf(cmd.OutOrStdout(), "packed %s -> %s (%s)\n", src, dst, humanize.Bytes(uint64(size)))
	return nil
}
