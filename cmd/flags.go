package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// OutputFlags are shared by commands that print reports.
type OutputFlags struct {
	Format string
	Quiet  bool
}

func addOutputFlags(cmd *cobra.Command, formats ...string) *OutputFlags {
	flags := &OutputFlags{}
	cmd.Flags().StringVarP(&flags.Format, "output", "o", formats[0],
		fmt.Sprintf("Output format (%s)", strings.Join(formats, "|")))
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress output on success")

	prev := cmd.PreRunE
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if !slices.Contains(formats, flags.Format) {
			return fmt.Errorf("unsupported output format %q (supported: %s)",
				flags.Format, strings.Join(formats, ", "))
		}
		if prev != nil {
			return prev(cmd, args)
		}
		return nil
	}
	return flags
}

// bindFlag ties a flag to a configuration key. It panics on a missing flag,
// which is a programming error.
func bindFlag(flags *pflag.FlagSet, key, name string) {
	flag := flags.Lookup(name)
	if flag == nil {
		panic(fmt.Sprintf("flag %q not defined", name))
	}
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
