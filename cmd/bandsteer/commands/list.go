package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steeraudit/bandsteer/internal/core/ports"
)

func listCmd() *cobra.Command {
	var vendor string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every analyzed capture",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			summaries, err := application.Registry.List(context.Background(), ports.ListFilter{Vendor: vendor})
			if err != nil {
				return err
			}

			if len(summaries) == 0 {
				fmt.Println("no analyses recorded")
				return nil
			}

			for _, s := range summaries {
				fmt.Printf("%s\t%s\t%s\t%s\n", s.AnalysisID, s.Vendor, s.Verdict, s.Filename)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&vendor, "vendor", "", "filter by device vendor")
	return cmd
}
