package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/steeraudit/bandsteer/internal/core/services/analysis"
)

func analyzeCmd() *cobra.Command {
	var (
		ssid      string
		clientMAC string
		brand     string
		model     string
	)

	cmd := &cobra.Command{
		Use:   "analyze <capture>",
		Short: "Analyze one capture file and persist the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			req := analysis.Request{
				CapturePath: args[0],
				Hints: domain.UserHints{
					SSID:        ssid,
					ClientMAC:   clientMAC,
					DeviceBrand: brand,
					DeviceModel: model,
				},
			}

			result, err := application.Pool.Submit(context.Background(), req)
			if err != nil {
				return err
			}

			fmt.Printf("analysis %s: verdict=%s devices=%d\n", result.AnalysisID, result.Verdict, len(result.Devices))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&ssid, "ssid", "", "SSID hint for the network under test")
	flags.StringVar(&clientMAC, "client-mac", "", "client MAC address hint")
	flags.StringVar(&brand, "brand", "", "device brand hint, overrides automatic classification")
	flags.StringVar(&model, "model", "", "device model hint, overrides automatic classification")

	return cmd
}
