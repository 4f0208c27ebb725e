package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	resultsTopic  string
	resultsSearch string
	resultsLimit  int
	resultsFull   bool
)

func GetResultsCommand() *cobra.Command {
	resultsCmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect stored batch results",
		Long: `Lists results recorded by batch runs, newest first.

Example:
  tickerchat results --topic "tech movers today"
  tickerchat results --search enrgy     # fuzzy-match a topic`,
		RunE: runResults,
	}
	resultsCmd.Flags().StringVar(&resultsTopic, "topic", "", "Only show results for this exact topic")
	resultsCmd.Flags().StringVar(&resultsSearch, "search", "", "Fuzzy-match a stored topic and show its results")
	resultsCmd.Flags().IntVar(&resultsLimit, "limit", 20, "Maximum results to show (0 for all)")
	resultsCmd.Flags().BoolVar(&resultsFull, "full", false, "Print full response payloads")
	return resultsCmd
}

func runResults(cmd *cobra.Command, args []string) error {
	store, err := openResultStore()
	if err != nil {
		return err
	}
	defer store.Close()

	topic := resultsTopic
	if resultsSearch != "" {
		matches, err := store.SearchTopics(resultsSearch)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return fmt.Errorf("no topic matches %q", resultsSearch)
		}
		topic = matches[0].Topic.Text
		fmt.Printf("Showing results for %q\n\n", topic)
	}

	results, err := store.ListResults(topic, resultsLimit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No results stored.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RAN AT\tSTATUS\tDURATION\tTOPIC")
	for _, r := range results {
		status := "ok"
		if !r.OK() {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.RanAt.Format("2006-01-02 15:04"), status, formatDuration(r.Duration), r.Topic)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if resultsFull {
		for _, r := range results {
			fmt.Printf("\n--- %s (%s) ---\n", r.Topic, r.RanAt.Format("2006-01-02 15:04"))
			if r.OK() {
				fmt.Println(r.Response)
			} else {
				fmt.Printf("error: %s\n", r.Err)
			}
		}
	}
	return nil
}
