package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset data in the database",
	Long: `Reset data in the database.

Numbering counters are kept, so numbers issued before a reset are never reused.

Examples:
  invoicer reset invoices     # Delete every stored invoice`,
}

var resetInvoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Delete all invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt("This will delete ALL invoices. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		n, err := appInstance.InvoiceRepo.DeleteAll(context.Background())
		if err != nil {
			return fmt.Errorf("failed to delete invoices: %w", err)
		}

		fmt.Printf("Deleted %d invoice(s).\n", n)
		return nil
	},
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	resetCmd.AddCommand(resetInvoicesCmd)

	resetInvoicesCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
