package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tickerchat/storage"
)

var topicsAll bool

func GetTopicsCommand() *cobra.Command {
	topicsCmd := &cobra.Command{
		Use:   "topics",
		Short: "Manage the standing topics used by batch runs",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored topics",
		RunE:  runTopicsList,
	}
	listCmd.Flags().BoolVar(&topicsAll, "all", false, "Include retired topics")

	addCmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a topic (re-adding a retired topic reactivates it)",
		Args:  cobra.ExactArgs(1),
		RunE:  runTopicsAdd,
	}

	rmCmd := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Retire a topic, keeping its result history",
		Args:    cobra.ExactArgs(1),
		RunE:    runTopicsRemove,
	}

	topicsCmd.AddCommand(listCmd)
	topicsCmd.AddCommand(addCmd)
	topicsCmd.AddCommand(rmCmd)
	return topicsCmd
}

func openResultStore() (*storage.ResultStore, error) {
	a, err := loadApp()
	if err != nil {
		return nil, err
	}
	return storage.NewResultStore(a.cfg.DataDir())
}

func runTopicsList(cmd *cobra.Command, args []string) error {
	store, err := openResultStore()
	if err != nil {
		return err
	}
	defer store.Close()

	topics, err := store.ListTopics(!topicsAll)
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		fmt.Println("No topics stored.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tACTIVE\tCREATED\tTOPIC")
	for _, t := range topics {
		active := "yes"
		if !t.Active {
			active = "no"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, active, t.CreatedAt.Format("2006-01-02"), t.Text)
	}
	return w.Flush()
}

func runTopicsAdd(cmd *cobra.Command, args []string) error {
	store, err := openResultStore()
	if err != nil {
		return err
	}
	defer store.Close()

	topic, err := store.AddTopic(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("✓ Added topic %d: %s\n", topic.ID, topic.Text)
	return nil
}

func runTopicsRemove(cmd *cobra.Command, args []string) error {
	store, err := openResultStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid topic id: %s", args[0])
	}
	if err := store.DeactivateTopic(id); err != nil {
		return err
	}
	fmt.Printf("✓ Retired topic %d\n", id)
	return nil
}
