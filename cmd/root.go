// Package cmd wires the CLI commands: interactive chat, batch runs, topic
// management, and stored result inspection.
package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tickerchat/config"
	"tickerchat/workflow"
)

// NewRootCommand builds the tickerchat command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tickerchat",
		Short: "Chat with a streaming workflow agent about the markets",
		Long: `tickerchat talks to a workflow-invocation API over server-sent events,
aggregates the streamed fragments into readable conversation turns, and keeps
transcripts and scheduled batch results on disk.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if config.CheckDebug() {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.WarnLevel)
			}
		},
	}

	rootCmd.AddCommand(GetChatCommand())
	rootCmd.AddCommand(GetRunCommand())
	rootCmd.AddCommand(GetTopicsCommand())
	rootCmd.AddCommand(GetResultsCommand())
	rootCmd.AddCommand(GetTranscriptsCommand())
	rootCmd.AddCommand(GetCredentialsCommand())

	return rootCmd
}

// app bundles the loaded configuration and credential store for commands.
type app struct {
	cfg   *config.Config
	creds *config.CredentialStore
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	creds := config.NewCredentialStore(
		config.SecurityMethod(cfg.Security.Method),
		config.ExpandPath(cfg.Security.SSHKeyPath),
	)
	if err := creds.Load(cfg.DataDir()); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	return &app{cfg: cfg, creds: creds}, nil
}

// apiKey resolves the bearer token: the env override wins, then the store.
func (a *app) apiKey() string {
	if key := config.APIKeyFromEnv(); key != "" {
		return key
	}
	return a.creds.Get(config.WorkflowKeyName)
}

func (a *app) workflowClient() (*workflow.Client, error) {
	key := a.apiKey()
	if key == "" {
		return nil, fmt.Errorf("no API key configured - run 'tickerchat credentials set' or set TICKERCHAT_API_KEY")
	}
	if a.cfg.APIURL == "" {
		return nil, fmt.Errorf("workflow.api_url is not set in %s/config.toml", a.cfg.DataDir())
	}
	if a.cfg.WorkflowID == "" {
		return nil, fmt.Errorf("workflow.workflow_id is not set in %s/config.toml", a.cfg.DataDir())
	}

	return workflow.NewClient(workflow.Config{
		BaseURL:    a.cfg.APIURL,
		WorkflowID: a.cfg.WorkflowID,
		APIKey:     key,
		HTTPClient: &http.Client{Timeout: 0}, // streams stay open indefinitely
	})
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
