package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"regnify/internal/config"
	"regnify/internal/domain"
	noopevents "regnify/internal/events/noop"
	"regnify/internal/repository/postgres"
	"regnify/internal/service"
	"regnify/internal/validator"
)

const revalidateBatchSize = 200

// RevalidateCmd re-runs validation for stored invoices, for example after a
// rule change.
func RevalidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revalidate [invoice-id...]",
		Short: "Re-run validation for stored invoices",
		Long: `Re-runs the validation engine for the given invoice ids, or for every
invoice in the --status given. The stored status, score and errors are replaced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			if len(args) == 0 && status == "" {
				return fmt.Errorf("pass invoice ids or --status")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			db, err := postgres.NewDB(&cfg.DB)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			registry, err := validator.NewRegistry()
			if err != nil {
				return err
			}
			invoices := service.NewInvoiceService(service.InvoiceDeps{
				InvoiceRepo: postgres.NewInvoiceRepo(db),
				UserRepo:    postgres.NewUserRepo(db),
				AuditRepo:   postgres.NewAuditRepo(db),
				Events:      noopevents.NewPublisher(),
				Engine:      validator.NewEngine(registry),
				S3:          &cfg.S3,
			})

			ids := make([]uuid.UUID, 0, len(args))
			for _, a := range args {
				id, err := uuid.Parse(a)
				if err != nil {
					return fmt.Errorf("invalid invoice id %q", a)
				}
				ids = append(ids, id)
			}
			if status != "" {
				more, err := idsWithStatus(cmd.Context(), invoices, domain.ProcessingStatus(strings.ToUpper(status)))
				if err != nil {
					return err
				}
				ids = append(ids, more...)
			}

			return Revalidate(cmd.Context(), invoices, ids, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("status", "", "revalidate every invoice with this processing status")
	return cmd
}

func idsWithStatus(ctx context.Context, invoices service.InvoiceService, status domain.ProcessingStatus) ([]uuid.UUID, error) {
	if !domain.ValidProcessingStatuses[status] {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	var ids []uuid.UUID
	filter := domain.InvoiceFilter{Status: status}
	for offset := 0; ; offset += revalidateBatchSize {
		batch, total, err := invoices.List(ctx, filter, offset, revalidateBatchSize)
		if err != nil {
			return nil, err
		}
		for i := range batch {
			ids = append(ids, batch[i].ID)
		}
		if len(batch) == 0 || offset+len(batch) >= total {
			return ids, nil
		}
	}
}

// Revalidate re-runs validation for each id and reports the new state.
// Failures are reported per invoice; the returned error summarises them.
func Revalidate(ctx context.Context, invoices service.InvoiceService, ids []uuid.UUID, w io.Writer) error {
	failed := 0
	for _, id := range ids {
		res, err := invoices.Revalidate(ctx, id)
		if err != nil {
			failed++
			fmt.Fprintf(w, "%s %s: %v\n", color.New(color.FgRed).Sprint("ERROR"), id, err)
			continue
		}
		fmt.Fprintf(w, "%s %s %s score=%d\n", color.New(color.FgGreen).Sprint("OK"),
			res.Invoice.InvoiceNumber, res.Invoice.Status, res.Validation.Score())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d invoices could not be revalidated", failed, len(ids))
	}
	return nil
}
