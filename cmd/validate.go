package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/conneroisu/folio/internal/config"
	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/content"
	"github.com/conneroisu/folio/internal/view"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [content-file]",
	Short: "Check a content file",
	Long: `Load a content file, check its fields, and render every page to make sure
each navigation link has a section to scroll to.

Examples:
  folio validate                        # Check the configured content file
  folio validate content/draft.yaml     # Check another file
  folio validate -o json                # Machine-readable report`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

var validateFlags *OutputFlags

func init() {
	rootCmd.AddCommand(validateCmd)
	validateFlags = addOutputFlags(validateCmd, "text", "json")
}

// ValidationReport is the result of checking one content file.
type ValidationReport struct {
	Path           string   `json:"path"`
	Valid          bool     `json:"valid"`
	Error          string   `json:"error,omitempty"`
	Projects       int      `json:"projects"`
	Featured       int      `json:"featured"`
	MissingAnchors []string `json:"missingAnchors,omitempty"`
	BrokenProjects []string `json:"brokenProjects,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := config.DefaultContentPath
	if len(args) == 1 {
		path = args[0]
	} else if cfg, err := config.Load(); err == nil {
		path = cfg.Content.Path
	}

	report := validateContent(cmd.Context(), path)

	out := cmd.OutOrStdout()
	switch validateFlags.Format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	default:
		if !report.Valid || !validateFlags.Quiet {
			printValidation(out, report)
		}
	}

	if !report.Valid {
		return fmt.Errorf("%s is not valid", path)
	}
	return nil
}

func validateContent(ctx context.Context, path string) ValidationReport {
	report := ValidationReport{Path: path}
	if ctx == nil {
		ctx = context.Background()
	}

	doc, err := content.Load(path)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Projects = len(doc.Projects)
	report.Featured = len(doc.FeaturedProjects())

	page := view.Page(view.PageData{Doc: doc, Contact: contact.IdleSnapshot(), Year: time.Now().Year()})
	missing, err := view.MissingAnchors(ctx, page, view.Sections)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.MissingAnchors = missing

	for _, p := range doc.Projects {
		if err := view.ProjectDetail(doc, p, time.Now().Year()).Render(ctx, io.Discard); err != nil {
			report.BrokenProjects = append(report.BrokenProjects, p.Slug)
		}
	}

	report.Valid = len(report.MissingAnchors) == 0 && len(report.BrokenProjects) == 0
	return report
}

func printValidation(w io.Writer, report ValidationReport) {
	fmt.Fprintln(w, titleStyle.Render("Content: "+report.Path))
	if report.Error != "" {
		fmt.Fprintf(w, "%s %s\n", checkMark(false), errorStyle.Render(report.Error))
		return
	}

	fmt.Fprintf(w, "%s fields valid\n", checkMark(true))
	fmt.Fprintf(w, "%s %d projects %s\n", checkMark(true), report.Projects,
		mutedStyle.Render(fmt.Sprintf("(%d featured)", report.Featured)))
	for _, id := range report.MissingAnchors {
		fmt.Fprintf(w, "%s no section for navigation link %q\n", checkMark(false), id)
	}
	for _, slug := range report.BrokenProjects {
		fmt.Fprintf(w, "%s project page %q failed to render\n", checkMark(false), slug)
	}
	if report.Valid {
		fmt.Fprintf(w, "%s every navigation link has a section\n", checkMark(true))
	}
}
