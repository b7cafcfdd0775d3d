package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/absfs/leafpack"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

// app carries the state shared by every command of one invocation
type app struct {
	v      *viper.Viper
	log    Logger
	codec  *leafpack.Codec
	prompt promptFunc
}

func newApp() *app {
	return &app{
		v:      viper.New(),
		prompt: terminalPrompt,
	}
}

func (a *app) newRootCmd() *cobra.Command {
	var (
		cfgFile string
		protect bool
	)

	rootCmd := &cobra.Command{
		Use:   "leafpack [file...]",
		Short: "Pack files into LPK containers and back",
		Long: `leafpack hides a file's name and contents inside an LPK container.

Given plain files it packs them; given .lpk containers it unpacks them.

Commands:
  pack      Pack files into containers
  unpack    Restore files from containers
  info      Show container details without unpacking
  rekey     Re-encode containers with new key material

Passwords are prompted for on the terminal, or taken from LEAFPACK_PASSWORD.
LPK is obfuscation: do not rely on it to protect secrets.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.runAuto(cmd, args, protect)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	pf.String("scheme", leafpack.SchemeSingleKey.String(), "cipher scheme for new containers (single-key, dual-key)")
	pf.StringP("out-dir", "o", "", "output directory (default: next to each input)")
	pf.BoolP("force", "f", false, "overwrite existing output files")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.String("seed", "", "seed for reproducible key material")
	pf.MarkHidden("seed")
	a.v.BindPFlags(pf)

	rootCmd.Flags().BoolVarP(&protect, "password", "P", false, "protect packed files with a password")

	rootCmd.AddCommand(
		a.newPackCmd(),
		a.newUnpackCmd(),
		a.newInfoCmd(),
		a.newRekeyCmd(),
	)
	return rootCmd
}

// setup loads configuration and builds the logger and codec
func (a *app) setup(cmd *cobra.Command, cfgFile string) error {
	a.v.SetEnvPrefix("LEAFPACK")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	level, err := log.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	a.log = NewLogger(level, cmd.ErrOrStderr())
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debugf("Loaded config from %s", used)
	}

	scheme, err := leafpack.ParseScheme(a.v.GetString("scheme"))
	if err != nil {
		return err
	}
	config := &leafpack.Config{Scheme: scheme}
	if seed := a.v.GetString("seed"); seed != "" {
		a.log.Warnf("Using a fixed seed: key material is reproducible")
		if config.Random, err = leafpack.NewSeededSource([]byte(seed)); err != nil {
			return err
		}
	}

	a.codec, err = leafpack.NewCodec(config)
	return err
}

// runAuto unpacks containers and packs everything else
func (a *app) runAuto(cmd *cobra.Command, args []string, protect bool) error {
	var packed []string
	for _, name := range args {
		if !leafpack.IsContainerName(name) {
			packed = append(packed, name)
		}
	}

	var password *string
	if protect && len(packed) > 0 {
		pw, err := a.newPassword("Password")
		if err != nil {
			return err
		}
		password = &pw
	}

	return a.each(args, func(name string) error {
		if leafpack.IsContainerName(name) {
			return a.unpackOne(cmd, name)
		}
		return a.packOne(cmd, name, password)
	})
}

// each runs fn for every name, logging failures and continuing with the rest
func (a *app) each(names []string, fn func(string) error) error {
	var errs []error
	for _, name := range names {
		if err := fn(name); err != nil {
			a.log.Errorf("%s: %v", name, err)
			errs = append(errs, err)
		}
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return fmt.Errorf("%d of %d files failed: %w", len(errs), len(names), errors.Join(errs...))
	}
}

// newPassword returns the password for new containers: LEAFPACK_PASSWORD if
// set, otherwise a confirmed terminal prompt.
func (a *app) newPassword(label string) (string, error) {
	if pw := a.v.GetString("password"); pw != "" {
		return pw, nil
	}
	return a.prompt(label, true)
}

// passwords returns the provider used to open protected containers
func (a *app) passwords() leafpack.PasswordProvider {
	return func() (string, error) {
		if pw := a.v.GetString("password"); pw != "" {
			return pw, nil
		}
		return a.prompt("Password", false)
	}
}
