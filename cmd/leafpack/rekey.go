package main

import (
	"fmt"

	"github.com/absfs/leafpack"
	"github.com/spf13/cobra"
)

func (a *app) newRekeyCmd() *cobra.Command {
	var (
		protect  bool
		toScheme string
	)

	cmd := &cobra.Command{
		Use:   "rekey [container...]",
		Short: "Re-encode containers with new key material",
		Long: `Decode each container and encode it again in place with fresh keys.

With -P the result is protected by a new password (LEAFPACK_NEW_PASSWORD or a
prompt); without it the result is unprotected. The current password comes
from LEAFPACK_PASSWORD or a prompt.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts leafpack.RepackOptions
			if toScheme != "" {
				scheme, err := leafpack.ParseScheme(toScheme)
				if err != nil {
					return err
				}
				opts.Scheme = scheme
			}
			if protect {
				pw := a.v.GetString("new-password")
				if pw == "" {
					var err error
					if pw, err = a.prompt("New password", true); err != nil {
						return err
					}
				}
				opts.NewPassword = &pw
			}

			return a.each(args, func(name string) error {
				a.log.Debugf("Rekeying %s", name)
				if err := a.rekeyFile(name, opts); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rekeyed %s\n", name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&protect, "password", "P", false, "protect the re-encoded containers with a new password")
	cmd.Flags().StringVar(&toScheme, "to-scheme", "", "scheme of the re-encoded containers (default: keep)")
	return cmd
}
