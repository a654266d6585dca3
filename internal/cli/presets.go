package cli

import (
	"fmt"

	"github.com/andy/invoicer/internal/domain"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Show the available tax presets",
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tax presets",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%-10s %-28s %-10s %-8s %s\n", "Key", "Name", "Mode", "Rate", "Label")
		fmt.Println("----------------------------------------------------------------------")

		for _, p := range domain.ListPresets() {
			fmt.Printf("%-10s %-28s %-10s %-8s %s\n",
				p.Key,
				truncate(p.Label, 28),
				p.Tax.Mode,
				p.Tax.Rate.Shift(2).String()+"%",
				p.Tax.Label,
			)
		}
	},
}

func init() {
	presetsCmd.AddCommand(presetsListCmd)
}
