// Command sheetcheck parses a question sheet the way the server does and
// reports which rows would be played and which would be skipped.
package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const releaseVersion = "0.1.0"

type Config struct {
	url        string
	file       string
	categories []string
	limit      int
	timeout    time.Duration
	verbose    bool
}

func (c *Config) validate() error {
	if (c.url == "") == (c.file == "") {
		return errors.New("exactly one of --url and --file is required")
	}
	if c.limit < 0 {
		return fmt.Errorf("invalid limit (must not be negative): %d", c.limit)
	}
	return nil
}

func main() {
	cobra.CheckErr(newCmd(&Config{}).Execute())
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SHEETCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "sheetcheck",
		Short:   "Validate a Bollywood quiz question sheet.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return check(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.url, "url", "u", "", "published CSV URL of the sheet (env: SHEETCHECK_URL)")
	fs.StringVarP(&cfg.file, "file", "f", "", "local CSV export of the sheet (env: SHEETCHECK_FILE)")
	fs.StringSliceVarP(&cfg.categories, "category", "c", nil, "only sample questions in this category, repeatable (env: SHEETCHECK_CATEGORY)")
	fs.IntVarP(&cfg.limit, "limit", "n", 5, "number of questions to sample, 0 for all (env: SHEETCHECK_LIMIT)")
	fs.DurationVar(&cfg.timeout, "timeout", 10*time.Second, "fetch timeout for --url (env: SHEETCHECK_TIMEOUT)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log fetch details to stderr (env: SHEETCHECK_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("sheetcheck v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
