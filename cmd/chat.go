package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tickerchat/chat"
	"tickerchat/model"
	"tickerchat/storage"
)

var (
	chatResume  bool
	chatSession string
)

func GetChatCommand() *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive streaming conversation",
		Long: `Opens a REPL against the configured workflow. Responses stream in as
aggregated steps; press Ctrl+C while a response is streaming to stop it
without losing what has already arrived.

Commands inside the REPL:
  /new    start a fresh session
  /quit   save the transcript and exit`,
		RunE: runChat,
	}
	chatCmd.Flags().BoolVar(&chatResume, "resume", false, "Resume the most recent session")
	chatCmd.Flags().StringVar(&chatSession, "session", "", "Continue a specific session ID")
	return chatCmd
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	client, err := a.workflowClient()
	if err != nil {
		return err
	}
	transcripts, err := storage.NewTranscriptStorage(a.cfg.DataDir())
	if err != nil {
		return err
	}

	ctrl := chat.NewController(client)
	switch {
	case chatSession != "":
		ctrl.SetSession(chatSession)
	case chatResume:
		if id, err := transcripts.LoadCurrentSessionID(); err == nil && id != "" {
			ctrl.SetSession(id)
			fmt.Printf("Resuming session %s\n", id)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			if ctrl.Busy() {
				ctrl.Cancel()
			} else {
				fmt.Println()
				saveTranscript(ctrl, transcripts)
				os.Exit(0)
			}
		}
	}()

	color.Cyan("session %s", ctrl.SessionID())
	fmt.Println("Type a prompt, /new for a fresh session, /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(color.GreenString("you> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			saveTranscript(ctrl, transcripts)
			return nil
		case "/new":
			saveTranscript(ctrl, transcripts)
			color.Cyan("session %s", ctrl.ResetSession())
			continue
		}

		streamExchange(cmd.Context(), ctrl, line)
		saveTranscript(ctrl, transcripts)
	}

	saveTranscript(ctrl, transcripts)
	return scanner.Err()
}

// streamExchange submits one prompt and renders the response once the stream
// settles, showing a live elapsed counter while it runs.
func streamExchange(ctx context.Context, ctrl *chat.Controller, prompt string) {
	done := make(chan error, 1)
	go func() { done <- ctrl.Submit(ctx, prompt) }()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	var err error
waiting:
	for {
		select {
		case err = <-done:
			break waiting
		case <-ticker.C:
			fmt.Printf("\r%s %.1fs ", color.YellowString("streaming"), ctrl.Elapsed())
		}
	}
	fmt.Print("\r\033[K")

	if err != nil {
		color.Red("✗ %v", err)
	}
	printLastAgentTurn(ctrl.Turns())
}

func printLastAgentTurn(turns []model.Turn) {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role != model.RoleAgent {
			continue
		}
		renderAgentTurn(turns[i])
		return
	}
}

func renderAgentTurn(turn model.Turn) {
	if !turn.Succeeded {
		color.Red("agent> %s", turn.Text)
		return
	}
	if len(turn.Steps) == 0 {
		color.New(color.Faint).Println("agent> (no response)")
		return
	}
	fmt.Print(color.BlueString("agent> "))
	for i, step := range turn.Steps {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(strings.TrimRight(step.Content, "\n"))
		if step.Link != "" {
			color.Magenta("  [chart → %s]", step.Link)
		}
	}
}

func saveTranscript(ctrl *chat.Controller, transcripts *storage.TranscriptStorage) {
	turns := ctrl.Turns()
	if len(turns) == 0 {
		return
	}
	tr := storage.NewTranscript(ctrl.SessionID(), turns)
	if err := transcripts.Save(tr); err != nil {
		color.Red("failed to save transcript: %v", err)
		return
	}
	if err := transcripts.SaveCurrentSessionID(ctrl.SessionID()); err != nil {
		color.Red("failed to record current session: %v", err)
	}
}
