package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/conneroisu/folio/internal/config"
	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/content"
	"github.com/conneroisu/folio/internal/inbox"
	"github.com/conneroisu/folio/internal/logging"
	"github.com/conneroisu/folio/internal/server"
	"github.com/conneroisu/folio/internal/watcher"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve the portfolio",
	Long: `Serve the portfolio page, project pages and the contact endpoints.

In development the content file is watched and open pages reload when it
changes. Contact messages go to contact.endpoint when set and to the local
inbox otherwise.

Examples:
  folio serve                          # Serve on localhost:8080
  folio serve -p 3000 --host 0.0.0.0   # Listen on all interfaces
  folio serve --content site.toml      # Use another content file`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "Port to serve on")
	serveCmd.Flags().String("host", config.DefaultHost, "Host to bind to")
	serveCmd.Flags().String("content", config.DefaultContentPath, "Content file (yaml, toml or json)")
	serveCmd.Flags().Bool("watch", true, "Reload pages when the content file changes")
	serveCmd.Flags().String("endpoint", "", "Forward contact messages to this URL")

	bindFlag(serveCmd.Flags(), "server.port", "port")
	bindFlag(serveCmd.Flags(), "server.host", "host")
	bindFlag(serveCmd.Flags(), "content.path", "content")
	bindFlag(serveCmd.Flags(), "content.watch", "watch")
	bindFlag(serveCmd.Flags(), "contact.endpoint", "endpoint")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := content.NewStore(cfg.Content.Path, logger)
	if err := store.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load content: %w", err)
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

	srv, err := server.New(server.Options{
		Config:  cfg,
		Content: store,
		Sender:  sender,
		Inbox:   box,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})

	if cfg.Content.Watch {
		fw, err := newContentWatcher(store, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return fw.Run(gctx)
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at http://%s\n", cfg.Content.Path, cfg.Server.Addr())
	return g.Wait()
}

func newContentWatcher(store *content.Store, logger logging.Logger) (*watcher.FileWatcher, error) {
	fw, err := watcher.NewFileWatcher(watcher.DefaultDebounce, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	fw.AddFilter(watcher.NoTempFilter)
	fw.AddFilter(watcher.ContentFilter)
	if err := fw.WatchFile(store.Path()); err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", store.Path(), err)
	}
	fw.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		return store.Reload(ctx)
	})
	return fw, nil
}

// openInbox returns nil when the inbox is disabled.
func openInbox(cfg *config.Config) (*inbox.Store, error) {
	if !cfg.Inbox.Enabled {
		return nil, nil
	}
	box, err := inbox.Open(cfg.Inbox.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inbox: %w", err)
	}
	return box, nil
}

// contactSender posts to the configured endpoint, or stores in box when no
// endpoint is set.
func contactSender(cfg *config.Config, box *inbox.Store) (contact.Sender, error) {
	if cfg.Contact.Endpoint != "" {
		return contact.NewHTTPSender(cfg.Contact.Endpoint, &http.Client{Timeout: cfg.Contact.Timeout}), nil
	}
	if box == nil {
		return nil, fmt.Errorf("no contact endpoint configured and the inbox is disabled")
	}
	return box, nil
}
