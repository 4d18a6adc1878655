package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/inbox"
	"github.com/conneroisu/folio/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fixture        = "../internal/content/testdata/portfolio.yaml"
	duplicateSlugs = "../internal/content/testdata/duplicate_slugs.yaml"
)

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// useInbox points the inbox at a fresh database and returns it.
func useInbox(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inbox.db")
	t.Setenv("FOLIO_INBOX_PATH", path)
	return path
}

func TestValidateContent(t *testing.T) {
	report := validateContent(context.Background(), fixture)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Error)
	assert.Equal(t, 2, report.Projects)
	assert.Equal(t, 1, report.Featured)
	assert.Empty(t, report.MissingAnchors)
	assert.Empty(t, report.BrokenProjects)

	report = validateContent(context.Background(), duplicateSlugs)
	assert.False(t, report.Valid)
	assert.Contains(t, report.Error, "duplicates")

	report = validateContent(context.Background(), "missing.yaml")
	assert.False(t, report.Valid)
	assert.NotEmpty(t, report.Error)
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate", fixture, "-o", "json")
	require.NoError(t, err)

	var report ValidationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Valid)
	assert.Equal(t, fixture, report.Path)

	out, err = run(t, "validate", duplicateSlugs, "-o", "text")
	require.Error(t, err)
	assert.Contains(t, out, "duplicates")

	_, err = run(t, "validate", fixture, "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestContactCommand(t *testing.T) {
	t.Run("invalid values list field errors", func(t *testing.T) {
		useInbox(t)
		contactName, contactEmail, contactMessage, contactEndpoint = "", "", "", ""

		out, err := run(t, "contact", "--name", "A", "--email", "nope")
		require.ErrorIs(t, err, contact.ErrInvalidForm)
		assert.Contains(t, out, "Name must be at least 2 characters")
		assert.Contains(t, out, "Please enter a valid email")
		assert.Contains(t, out, "Message is required")
	})

	t.Run("valid values land in the inbox", func(t *testing.T) {
		path := useInbox(t)
		contactName, contactEmail, contactMessage, contactEndpoint = "", "", "", ""

		out, err := run(t, "contact",
			"--name", "Ada Lovelace",
			"--email", "ada@example.com",
			"--message", "Sent from the terminal")
		require.NoError(t, err)
		assert.Contains(t, out, "Message sent")

		box, err := inbox.Open(path)
		require.NoError(t, err)
		defer box.Close()
		msgs, err := box.List(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "Sent from the terminal", msgs[0].Body)
	})
}

func TestInboxCommand(t *testing.T) {
	path := useInbox(t)
	box, err := inbox.Open(path)
	require.NoError(t, err)
	for _, v := range []contact.Values{
		{Name: "Ada", Email: "ada@example.com", Message: "First message here"},
		{Name: "Grace", Email: "grace@example.com", Message: "Second message here"},
	} {
		_, err := box.Save(context.Background(), v)
		require.NoError(t, err)
	}
	require.NoError(t, box.Close())

	inboxLimit = 20
	out, err := run(t, "inbox", "-o", "json")
	require.NoError(t, err)

	var msgs []inbox.Message
	require.NoError(t, json.Unmarshal([]byte(out), &msgs))
	require.Len(t, msgs, 2)

	out, err = run(t, "inbox", "-o", "table", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Inbox: 1 of 2 messages")
	assert.Contains(t, out, "EMAIL")
}

func TestPrintInboxEmpty(t *testing.T) {
	var out bytes.Buffer
	printInbox(&out, nil, 0)
	assert.Contains(t, out.String(), "No messages yet.")
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt("short", 10))
	assert.Equal(t, "two lines", excerpt("two\n  lines", 10))
	assert.Equal(t, "abcd…", excerpt("abcdefgh", 5))
	assert.Equal(t, "żółw…", excerpt("żółwie ciało", 5))
}

func TestVersionCommand(t *testing.T) {
	versionShort = false
	out, err := run(t, "version", "-o", "json")
	require.NoError(t, err)

	var info version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	out, err = run(t, "version", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "folio ")
	assert.Contains(t, out, "Platform:")
}

func TestContactSender(t *testing.T) {
	box, err := inbox.Open(":memory:")
	require.NoError(t, err)
	defer box.Close()

	cfg, _, err := loadConfig()
	require.NoError(t, err)

	sender, err := contactSender(cfg, box)
	require.NoError(t, err)
	assert.Same(t, box, sender)

	cfg.Contact.Endpoint = "https://formspree.io/f/abc"
	sender, err = contactSender(cfg, box)
	require.NoError(t, err)
	httpSender, ok := sender.(*contact.HTTPSender)
	require.True(t, ok)
	assert.Equal(t, "https://formspree.io/f/abc", httpSender.Endpoint())

	cfg.Contact.Endpoint = ""
	_, err = contactSender(cfg, nil)
	assert.Error(t, err)
}
