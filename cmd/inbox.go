package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/conneroisu/folio/internal/inbox"
	"github.com/spf13/cobra"
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "List messages sent through the contact form",
	Long: `List messages stored in the local inbox, newest first.

Examples:
  folio inbox                 # The 20 latest messages
  folio inbox -n 0            # Every message
  folio inbox -o json         # As JSON`,
	RunE: runInbox,
}

var (
	inboxFlags *OutputFlags
	inboxLimit int
)

func init() {
	rootCmd.AddCommand(inboxCmd)
	inboxFlags = addOutputFlags(inboxCmd, "table", "json")
	inboxCmd.Flags().IntVarP(&inboxLimit, "limit", "n", 20, "Maximum messages to show (0 for all)")
}

func runInbox(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Inbox.Enabled {
		return fmt.Errorf("the inbox is disabled; messages go to %s", cfg.Contact.Endpoint)
	}

	box, err := inbox.Open(cfg.Inbox.Path)
	if err != nil {
		return fmt.Errorf("failed to open inbox: %w", err)
	}
	defer box.Close()

	msgs, err := box.List(cmd.Context(), inboxLimit)
	if err != nil {
		return err
	}
	total, err := box.Count(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if inboxFlags.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(msgs)
	}
	printInbox(out, msgs, total)
	return nil
}

func printInbox(w io.Writer, msgs []inbox.Message, total int) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Inbox: %d of %d messages", len(msgs), total)))
	if len(msgs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No messages yet."))
		return
	}

	rows := make([][]string, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, []string{
			m.ReceivedAt.Local().Format(time.DateTime),
			m.Name,
			m.Email,
			excerpt(m.Body, 48),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("RECEIVED", "NAME", "EMAIL", "MESSAGE").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

// excerpt flattens s to one line and cuts it to n runes.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
