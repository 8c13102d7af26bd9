package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steeraudit/bandsteer/internal/core/domain"
)

var errDeleteTargetRequired = fmt.Errorf("%w: specify exactly one of an analysis ID, --vendor, or --all", domain.ErrInvalidInput)

func deleteCmd() *cobra.Command {
	var (
		vendor string
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete one analysis, every analysis for a vendor, or everything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			targets := 0
			if len(args) == 1 {
				targets++
			}
			if vendor != "" {
				targets++
			}
			if all {
				targets++
			}
			if targets != 1 {
				return errDeleteTargetRequired
			}

			ctx := context.Background()

			switch {
			case all:
				n, err := application.Registry.DeleteAll(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("deleted %d analyses\n", n)
			case vendor != "":
				n, err := application.Registry.DeleteByVendor(ctx, vendor)
				if err != nil {
					return err
				}
				fmt.Printf("deleted %d analyses for vendor %q\n", n, vendor)
			default:
				if err := application.Registry.DeleteByID(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("deleted analysis %s\n", args[0])
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&vendor, "vendor", "", "delete every analysis attributed to this vendor")
	cmd.Flags().BoolVar(&all, "all", false, "delete every analysis")

	return cmd
}
