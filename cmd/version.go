package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/conneroisu/folio/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the folio version, commit, build time, Go version and platform.

Examples:
  folio version              # Version and build details
  folio version --short      # Version only
  folio version -o json      # As JSON`,
	RunE: runVersion,
}

var (
	versionFlags *OutputFlags
	versionShort bool
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionFlags = addOutputFlags(versionCmd, "text", "json")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show the version only")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	info := version.GetBuildInfo()

	switch {
	case versionFlags.Format == "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case versionShort:
		fmt.Fprintln(out, version.GetShortVersion())
		return nil
	}
	printVersion(out, info)
	return nil
}

func printVersion(w io.Writer, info version.BuildInfo) {
	line := "folio " + version.GetShortVersion()
	if info.Dirty {
		line += " (dirty)"
	}
	fmt.Fprintln(w, line)
	if !info.BuildTime.IsZero() {
		fmt.Fprintf(w, "Built: %s\n", info.BuildTime.Format(time.DateTime+" UTC"))
	}
	fmt.Fprintf(w, "Go: %s\n", info.GoVersion)
	fmt.Fprintf(w, "Platform: %s\n", info.Platform)
	if info.Release {
		fmt.Fprintln(w, "Build type: release")
	} else {
		fmt.Fprintln(w, "Build type: development")
	}
}
