package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mailsift/mailsift/internal/labels"
)

func newLabelsCmd() *cobra.Command {
	var accountFlag string

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "List mailbox labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			gateway, _, err := setupGateway(db, cfg, accountFlag)
			if err != nil {
				return err
			}

			labelList, err := gateway.ListLabels(cmd.Context())
			if err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(toJSONLabels(labelList))
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE")
			for _, l := range labelList {
				fmt.Fprintf(w, "%s\t%s\t%s\n", l.ID, l.Name, l.Type)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&accountFlag, "account", "", "account ID")
	cmd.AddCommand(newLabelsEnsureCmd())
	return cmd
}

func newLabelsEnsureCmd() *cobra.Command {
	var accountFlag string

	cmd := &cobra.Command{
		Use:   "ensure <name>",
		Short: "Resolve a label by name, creating it if absent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			gateway, _, err := setupGateway(db, cfg, accountFlag)
			if err != nil {
				return err
			}

			dir := labels.NewDirectory(gateway)
			id, err := dir.ResolveOrCreate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "ensure", LabelID: id})
			}

			fmt.Printf("Label %q -> %s\n", args[0], id)
			return nil
		},
	}

	cmd.Flags().StringVar(&accountFlag, "account", "", "account ID")
	return cmd
}
