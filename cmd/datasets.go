package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List cached datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		list, err := s.ListDatasets(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("no datasets imported")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tROWS\tSOURCE\tIMPORTED")
		for _, d := range list {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
				d.Name, d.Rows, d.Source, d.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var datasetsRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a cached dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.DeleteDataset(ctx, args[0]); err != nil {
			return err
		}
		zap.L().Info("dataset deleted", zap.String("name", args[0]))
		return nil
	},
}

func init() {
	datasetsCmd.AddCommand(datasetsRmCmd)
	rootCmd.AddCommand(datasetsCmd)
}
