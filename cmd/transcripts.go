package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tickerchat/model"
	"tickerchat/storage"
)

var transcriptsSearch string

func GetTranscriptsCommand() *cobra.Command {
	transcriptsCmd := &cobra.Command{
		Use:   "transcripts",
		Short: "Browse saved conversation transcripts",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved transcripts, newest first",
		RunE:  runTranscriptsList,
	}
	listCmd.Flags().StringVar(&transcriptsSearch, "search", "", "Fuzzy-match transcript names")

	showCmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE:  runTranscriptsShow,
	}

	deleteCmd := &cobra.Command{
		Use:     "delete <session-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved transcript",
		Args:    cobra.ExactArgs(1),
		RunE:    runTranscriptsDelete,
	}

	transcriptsCmd.AddCommand(listCmd)
	transcriptsCmd.AddCommand(showCmd)
	transcriptsCmd.AddCommand(deleteCmd)
	return transcriptsCmd
}

func openTranscriptStorage() (*storage.TranscriptStorage, error) {
	a, err := loadApp()
	if err != nil {
		return nil, err
	}
	return storage.NewTranscriptStorage(a.cfg.DataDir())
}

func runTranscriptsList(cmd *cobra.Command, args []string) error {
	transcripts, err := openTranscriptStorage()
	if err != nil {
		return err
	}

	var metas []storage.TranscriptMetadata
	if transcriptsSearch != "" {
		matches, err := transcripts.SearchTranscripts(transcriptsSearch)
		if err != nil {
			return err
		}
		for _, m := range matches {
			metas = append(metas, m.Transcript)
		}
	} else {
		metas, err = transcripts.List()
		if err != nil {
			return err
		}
	}
	if len(metas) == 0 {
		fmt.Println("No transcripts found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "UPDATED\tTURNS\tSESSION\tNAME")
	for _, m := range metas {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			m.UpdatedAt.Format("2006-01-02 15:04"), m.TurnCount, m.SessionID, m.Name)
	}
	return w.Flush()
}

func runTranscriptsShow(cmd *cobra.Command, args []string) error {
	transcripts, err := openTranscriptStorage()
	if err != nil {
		return err
	}

	t, err := transcripts.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n\n", t.Name, t.SessionID)
	for _, turn := range t.Turns {
		switch {
		case turn.Role == string(model.RoleHuman):
			fmt.Printf("you> %s\n", turn.Text)
		case !turn.Succeeded:
			fmt.Printf("agent> %s\n", turn.Text)
		default:
			fmt.Print("agent> ")
			for i, step := range turn.Steps {
				if i > 0 {
					fmt.Println()
				}
				fmt.Println(strings.TrimRight(step.Content, "\n"))
				if step.Link != "" {
					fmt.Printf("  [chart → %s]\n", step.Link)
				}
			}
		}
		fmt.Println()
	}
	return nil
}

func runTranscriptsDelete(cmd *cobra.Command, args []string) error {
	transcripts, err := openTranscriptStorage()
	if err != nil {
		return err
	}
	if err := transcripts.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Deleted transcript %s\n", args[0])
	return nil
}
