package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tickerchat/config"
)

func GetCredentialsCommand() *cobra.Command {
	credsCmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the stored workflow API key",
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Store the workflow API key (prompted, not taken from argv)",
		RunE:  runCredentialsSet,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored workflow API key",
		RunE:  runCredentialsClear,
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether an API key is configured",
		RunE:  runCredentialsStatus,
	}

	credsCmd.AddCommand(setCmd)
	credsCmd.AddCommand(clearCmd)
	credsCmd.AddCommand(statusCmd)
	return credsCmd
}

func runCredentialsSet(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	fmt.Print("API key: ")
	reader := bufio.NewReader(os.Stdin)
	key, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("no key entered")
	}

	a.creds.Set(config.WorkflowKeyName, key)
	if err := a.creds.Save(a.cfg.DataDir()); err != nil {
		return err
	}
	fmt.Printf("✓ Stored workflow API key (%s)\n", a.creds.GetMethod())
	return nil
}

func runCredentialsClear(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	a.creds.Delete(config.WorkflowKeyName)
	if err := a.creds.Save(a.cfg.DataDir()); err != nil {
		return err
	}
	fmt.Println("✓ Cleared workflow API key")
	return nil
}

func runCredentialsStatus(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	switch {
	case config.APIKeyFromEnv() != "":
		fmt.Println("API key: set via TICKERCHAT_API_KEY")
	case a.creds.Get(config.WorkflowKeyName) != "":
		fmt.Printf("API key: stored (%s)\n", a.creds.GetMethod())
	default:
		fmt.Println("API key: not configured")
	}
	return nil
}
