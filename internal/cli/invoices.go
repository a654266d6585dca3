package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/andy/invoicer/internal/domain"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Manage invoices",
	Long: `Create, edit, save, and render invoices.

Invoices can be referenced by id, id prefix, or invoice number.`,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent invoices, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		limit, _ := cmd.Flags().GetInt("limit")
		if !cmd.Flags().Changed("limit") {
			limit = appInstance.Config.Invoice.RecentLimit
		}

		invoices, err := appInstance.InvoiceService.ListRecent(ctx, limit)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		if len(invoices) == 0 {
			fmt.Println("No invoices found")
			return nil
		}

		fmt.Printf("%-9s %-18s %-24s %-11s %16s\n", "ID", "Number", "Customer", "Date", "Total")
		fmt.Println("--------------------------------------------------------------------------------")

		for _, inv := range invoices {
			fmt.Printf("%-9s %-18s %-24s %-11s %16s\n",
				shortID(inv.ID),
				displayNumber(inv),
				truncate(inv.Customer.Name, 24),
				inv.CreatedAt.Format("2006-01-02"),
				inv.Currency.Code+" "+inv.Totals.Total.StringFixed(2),
			)
		}

		fmt.Printf("\nTotal: %d invoice(s)\n", len(invoices))
		return nil
	},
}

var invoicesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an invoice from a YAML draft",
	Long: `Create an invoice from a YAML draft file.

Without --save the draft is only previewed; nothing is stored and no number
is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		path, _ := cmd.Flags().GetString("file")
		draft, err := loadDraft(path)
		if err != nil {
			return err
		}

		presetKey, _ := cmd.Flags().GetString("preset")
		invoice, err := draft.build(appInstance.InvoiceService, presetKey, appInstance.Config.Invoice.DefaultPreset)
		if err != nil {
			return err
		}

		if store, _ := cmd.Flags().GetBool("save"); !store {
			printInvoice(os.Stdout, invoice)
			if problems := domain.Validate(invoice); len(problems) > 0 {
				fmt.Println(describeError(problems.Err()))
			} else {
				fmt.Println("Draft is valid. Re-run with --save to store it.")
			}
			return nil
		}

		saved, err := appInstance.InvoiceService.Save(ctx, invoice)
		if err != nil {
			return describeError(err)
		}

		fmt.Printf("✓ Invoice saved: %s\n", saved.InvoiceNumber)
		fmt.Printf("  ID: %s\n", saved.ID)
		fmt.Printf("  Total: %s\n", domain.FormatMoney(saved.Totals.Total, saved.Currency))
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show invoice details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		invoice, err := resolveInvoice(context.Background(), appInstance.InvoiceService, args[0])
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}

		if share, _ := cmd.Flags().GetBool("share"); share {
			fmt.Println(invoice.ShareText())
			return nil
		}

		printInvoice(os.Stdout, invoice)
		return nil
	},
}

var invoicesEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Apply a YAML patch to an invoice and save it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		draft, err := loadDraft(path)
		if err != nil {
			return err
		}

		edits, err := draft.Edits()
		if err != nil {
			return err
		}

		return editAndSave(args[0], edits...)
	},
}

var invoicesAddItemCmd = &cobra.Command{
	Use:   "add-item [id]",
	Short: "Add a line item and save",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		hsn, _ := cmd.Flags().GetString("hsn")
		qty, _ := cmd.Flags().GetString("qty")
		price, _ := cmd.Flags().GetString("price")

		item, err := itemFile{Name: name, HSN: hsn, Qty: qty, Price: price}.item()
		if err != nil {
			return err
		}

		return editAndSave(args[0], domain.AddItem(item))
	},
}

var invoicesRemoveItemCmd = &cobra.Command{
	Use:   "remove-item [id] [line]",
	Short: "Remove a line item (numbered as in show) and save",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editItemAt(args[0], args[1], func(item domain.Item) domain.Edit {
			return domain.RemoveItem(item.ID)
		})
	},
}

var invoicesMoveItemCmd = &cobra.Command{
	Use:   "move-item [id] [line] [to]",
	Short: "Move a line item to another position and save",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid position: %w", err)
		}
		return editItemAt(args[0], args[1], func(item domain.Item) domain.Edit {
			return domain.MoveItem(item.ID, to-1)
		})
	},
}

var invoicesSetLogoCmd = &cobra.Command{
	Use:   "set-logo [id] [file]",
	Short: "Attach a logo image (max 1 MB) and save",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if clearLogo, _ := cmd.Flags().GetBool("clear"); clearLogo {
			return editAndSave(args[0], domain.ClearLogo())
		}
		if len(args) < 2 {
			return errors.New("a logo file is required unless --clear is given")
		}

		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}

		ctx := context.Background()
		invoice, err := resolveInvoice(ctx, appInstance.InvoiceService, args[0])
		if err != nil {
			return err
		}

		updated, err := appInstance.InvoiceService.AttachLogo(invoice, data)
		if err != nil {
			return fmt.Errorf("failed to attach logo: %w", err)
		}

		return save(ctx, updated)
	},
}

var invoicesSaveCmd = &cobra.Command{
	Use:   "save [id]",
	Short: "Validate and save an invoice, numbering it if needed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editAndSave(args[0])
	},
}

var invoicesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, appInstance.InvoiceService, args[0])
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt(fmt.Sprintf("Delete invoice %s?", displayNumber(invoice))) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.InvoiceService.Delete(ctx, invoice.ID); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}

		fmt.Printf("✓ Invoice %s deleted\n", displayNumber(invoice))
		return nil
	},
}

var invoicesDuplicateCmd = &cobra.Command{
	Use:   "duplicate [id]",
	Short: "Copy an invoice into a new unnumbered draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, appInstance.InvoiceService, args[0])
		if err != nil {
			return err
		}

		copied, err := appInstance.InvoiceService.Duplicate(ctx, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to duplicate invoice: %w", err)
		}

		fmt.Printf("✓ Draft created from %s\n", displayNumber(invoice))
		fmt.Printf("  ID: %s\n", copied.ID)
		fmt.Println("  Run 'invoicer invoices save <id>' to number it.")
		return nil
	},
}

var invoicesPDFCmd = &cobra.Command{
	Use:   "pdf [id]",
	Short: "Render a saved invoice to PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, appInstance.InvoiceService, args[0])
		if err != nil {
			return err
		}

		data, err := appInstance.InvoiceService.Render(ctx, invoice.ID)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = filepath.Join(appInstance.Config.Invoice.OutputDir, invoice.InvoiceNumber+".pdf")
		}
		if err := writeArtifact(out, data); err != nil {
			return err
		}

		fmt.Printf("✓ PDF written to %s\n", out)
		return nil
	},
}

var invoicesExportCmd = &cobra.Command{
	Use:   "export-xlsx",
	Short: "Export all numbered invoices to an Excel ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			name := fmt.Sprintf("ledger-%s.xlsx", time.Now().Format("20060102"))
			out = filepath.Join(appInstance.Config.Invoice.OutputDir, name)
		}

		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return err
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}

		if err := appInstance.InvoiceService.ExportLedger(context.Background(), f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		fmt.Printf("✓ Ledger written to %s\n", out)
		return nil
	},
}

// editAndSave loads an invoice, applies edits and saves it
func editAndSave(ref string, edits ...domain.Edit) error {
	ctx := context.Background()

	invoice, err := resolveInvoice(ctx, appInstance.InvoiceService, ref)
	if err != nil {
		return err
	}

	return save(ctx, appInstance.InvoiceService.Edit(invoice, edits...))
}

// editItemAt resolves a 1-based line number to an item and applies the
// edit built for it
func editItemAt(ref, line string, build func(item domain.Item) domain.Edit) error {
	ctx := context.Background()

	invoice, err := resolveInvoice(ctx, appInstance.InvoiceService, ref)
	if err != nil {
		return err
	}

	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(invoice.Items) {
		return fmt.Errorf("line must be between 1 and %d", len(invoice.Items))
	}

	updated := appInstance.InvoiceService.Edit(invoice, build(invoice.Items[n-1]))
	return save(ctx, updated)
}

func save(ctx context.Context, invoice *domain.Invoice) error {
	saved, err := appInstance.InvoiceService.Save(ctx, invoice)
	if err != nil {
		return describeError(err)
	}

	fmt.Printf("✓ Invoice %s saved\n", saved.InvoiceNumber)
	fmt.Printf("  Total: %s\n", domain.FormatMoney(saved.Totals.Total, saved.Currency))
	return nil
}

func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func init() {
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesCreateCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesEditCmd)
	invoicesCmd.AddCommand(invoicesAddItemCmd)
	invoicesCmd.AddCommand(invoicesRemoveItemCmd)
	invoicesCmd.AddCommand(invoicesMoveItemCmd)
	invoicesCmd.AddCommand(invoicesSetLogoCmd)
	invoicesCmd.AddCommand(invoicesSaveCmd)
	invoicesCmd.AddCommand(invoicesDeleteCmd)
	invoicesCmd.AddCommand(invoicesDuplicateCmd)
	invoicesCmd.AddCommand(invoicesPDFCmd)
	invoicesCmd.AddCommand(invoicesExportCmd)

	// List flags
	invoicesListCmd.Flags().Int("limit", 20, "Maximum number of invoices to show")

	// Create flags
	invoicesCreateCmd.Flags().StringP("file", "f", "", "YAML draft file (required)")
	invoicesCreateCmd.Flags().String("preset", "", "Tax preset key (see 'presets list')")
	invoicesCreateCmd.Flags().Bool("save", false, "Validate, number and store the invoice")
	invoicesCreateCmd.MarkFlagRequired("file")

	// Show flags
	invoicesShowCmd.Flags().Bool("share", false, "Print the short share text only")

	// Edit flags
	invoicesEditCmd.Flags().StringP("file", "f", "", "YAML patch file (required)")
	invoicesEditCmd.MarkFlagRequired("file")

	// Add item flags
	invoicesAddItemCmd.Flags().String("name", "", "Item description (required)")
	invoicesAddItemCmd.Flags().String("hsn", "", "HSN/SAC code")
	invoicesAddItemCmd.Flags().String("qty", "1", "Quantity")
	invoicesAddItemCmd.Flags().String("price", "", "Unit price (required)")
	invoicesAddItemCmd.MarkFlagRequired("name")
	invoicesAddItemCmd.MarkFlagRequired("price")

	invoicesSetLogoCmd.Flags().Bool("clear", false, "Remove the current logo")
	invoicesDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	invoicesPDFCmd.Flags().StringP("output", "o", "", "Output path (defaults to the configured output dir)")
	invoicesExportCmd.Flags().StringP("output", "o", "", "Output path (defaults to the configured output dir)")
}
