// Package cli implements the sharemal terminal client. Every command drives
// the same front-end controller (internal/app) the form and list views use,
// talking to the REST backend through internal/client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kyawswar87/share-mal/internal/app"
	"github.com/kyawswar87/share-mal/internal/client"
	"github.com/kyawswar87/share-mal/internal/config"
	"github.com/kyawswar87/share-mal/pkg/logging"
)

// session carries what every command needs once the root command has read
// its flags.
type session struct {
	configPath string
	apiURL     string
	logLevel   string

	now    func() time.Time
	client *client.Client
	app    *app.App
}

// Execute runs the sharemal command line with os.Args.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// NewRootCmd builds the sharemal command tree.
func NewRootCmd() *cobra.Command {
	s := &session{now: time.Now}

	rootCmd := &cobra.Command{
		Use:   "sharemal",
		Short: "Split bills with friends",
		Long: `sharemal manages shared bills stored by the share-mal server.
Bills are split equally or by custom amounts, and each person's
payment is tracked until the whole bill is settled.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&s.configPath, "config", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&s.apiURL, "api-url", "", "Bill API base URL (default "+client.DefaultBaseURL+")")
	rootCmd.PersistentFlags().StringVar(&s.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newListCmd(s),
		newShowCmd(s),
		newCreateCmd(s),
		newEditCmd(s),
		newDeleteCmd(s),
		newPayCmd(s),
		newRefreshStatusCmd(s),
		newSplitCmd(s),
	)
	return rootCmd
}

func (s *session) init(cmd *cobra.Command) error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api-url") {
		cfg.Client.APIURL = s.apiURL
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = s.logLevel
	}

	logging.Setup(cfg.Log.Level)

	s.client = client.New(cfg.Client.APIURL, client.WithTimeout(cfg.Client.Timeout.Duration))
	s.app = app.New(s.client)
	return nil
}

// failure turns an app action error into the message the app would show,
// falling back to err itself.
func (s *session) failure(err error) error {
	if msg := s.app.State().Error; msg != "" {
		return errors.New(msg)
	}
	return err
}

func (s *session) ctx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
