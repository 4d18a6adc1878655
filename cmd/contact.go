package cmd

import (
	"errors"
	"fmt"

	"github.com/conneroisu/folio/internal/contact"
	"github.com/spf13/cobra"
)

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Send a contact message from the terminal",
	Long: `Validate and send a message the same way the contact form does. Useful for
checking that the configured endpoint accepts messages.

Examples:
  folio contact --name "Ada" --email ada@example.com --message "Hello there!"
  folio contact --endpoint https://formspree.io/f/abc ...`,
	RunE: runContact,
}

var (
	contactName     string
	contactEmail    string
	contactMessage  string
	contactEndpoint string
)

func init() {
	rootCmd.AddCommand(contactCmd)
	contactCmd.Flags().StringVar(&contactName, "name", "", "Sender name")
	contactCmd.Flags().StringVar(&contactEmail, "email", "", "Sender email")
	contactCmd.Flags().StringVarP(&contactMessage, "message", "m", "", "Message body")
	// Not bound to contact.endpoint; serve owns that binding.
	contactCmd.Flags().StringVar(&contactEndpoint, "endpoint", "", "Send to this URL instead of the configured one")
}

func runContact(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if contactEndpoint != "" {
		cfg.Contact.Endpoint = contactEndpoint
	}

	box, err := openInbox(cfg)
	if err != nil {
		return err
	}
	if box != nil {
		defer box.Close()
	}
	sender, err := contactSender(cfg, box)
	if err != nil {
		return err
	}

	controller := contact.NewController(sender, contact.WithLogger(logger))
	defer controller.Close()

	values := contact.Values{Name: contactName, Email: contactEmail, Message: contactMessage}
	status, err := submitContact(cmd, controller, values)

	out := cmd.OutOrStdout()
	switch {
	case errors.Is(err, contact.ErrInvalidForm):
		snap := controller.Snapshot()
		for _, field := range contact.Fields {
			if msg := snap.Error(field); msg != "" {
				fmt.Fprintf(out, "%s %s: %s\n", checkMark(false), field, errorStyle.Render(msg))
			}
		}
		return err
	case err != nil:
		fmt.Fprintf(out, "%s %s\n", checkMark(false), errorStyle.Render("Failed to send message."))
		return err
	}

	fmt.Fprintf(out, "%s %s\n", checkMark(true), successStyle.Render("Message sent ("+string(status)+")."))
	return nil
}

func submitContact(cmd *cobra.Command, c *contact.Controller, values contact.Values) (contact.Status, error) {
	for _, field := range contact.Fields {
		if err := c.FieldBlur(field, values.Get(field)); err != nil {
			return c.Status(), err
		}
	}
	attempt, err := c.Submit(cmd.Context())
	if err != nil {
		return c.Status(), err
	}
	return attempt.Wait()
}
