package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stockreceipt/internal/app"
	"stockreceipt/internal/config"
	"stockreceipt/internal/domain/receiving"
	"stockreceipt/internal/infrastructure/importer"
	"stockreceipt/pkg/logger"
)

type runOptions struct {
	file        string
	concurrency int
	resolve     bool
	dryRun      bool
	jsonOutput  bool
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a batch file (.yaml, .yml or .xlsx)",
		Example: `  receive run --file delivery.yaml
  receive run --file delivery.xlsx --concurrency 10 --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "batch file to apply")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "override RECEIVING_CONCURRENCY")
	cmd.Flags().BoolVar(&opts.resolve, "resolve", true, "fill names, stock snapshot and warehouse from the catalog")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "assemble and print the batch without applying it")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (o runOptions) run(ctx context.Context, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if o.concurrency > 0 {
		cfg.Receiving.Concurrency = o.concurrency
	}

	log, err := app.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(logger.WithLogger(ctx, log), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batch, err := importer.ReadFile(o.file, time.Now())
	if err != nil {
		return err
	}

	deps, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	return o.apply(ctx, deps.Service, batch, stdout, stderr)
}

// apply resolves, assembles, executes, and prints. The returned error is
// non-nil when the batch was rejected or any line failed.
func (o runOptions) apply(ctx context.Context, svc *receiving.Service, in *importer.Batch, stdout, stderr io.Writer) error {
	rows := in.Rows
	if o.resolve {
		resolved, err := resolveRows(ctx, svc, rows)
		if err != nil {
			return err
		}
		rows = resolved
	}

	batch, err := svc.Assemble(rows, in.Metadata)
	if err != nil {
		printRejection(stderr, err)
		return err
	}

	if o.dryRun {
		fmt.Fprintf(stdout, "batch ok: %d item(s), quantity %s, value %s %s\n",
			batch.ItemCount(), batch.TotalQuantity(), batch.TotalValue(), svc.Rules().CurrencyUnit)
		return nil
	}

	report := svc.Execute(ctx, *batch, func(completed, total int) {
		fmt.Fprintf(stderr, "\rapplied %d/%d", completed, total)
	})
	fmt.Fprintln(stderr)
	fin := svc.Finalize(ctx, *batch, report)

	if o.jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Report       receiving.BatchReport  `json:"report"`
			Finalization receiving.Finalization `json:"finalization"`
		}{report, fin}); err != nil {
			return err
		}
	} else {
		printReport(stdout, report, fin)
	}

	if !report.FullySucceeded() {
		return fmt.Errorf("%d of %d item(s) failed", report.Failed, report.Total)
	}
	return nil
}

// resolveRows refreshes each row from the catalog. Rows without a variant are
// left for the assembler to drop.
func resolveRows(ctx context.Context, svc *receiving.Service, rows []receiving.ReceivedLine) ([]receiving.ReceivedLine, error) {
	out := make([]receiving.ReceivedLine, len(rows))
	for i, row := range rows {
		if row.VariantRef == "" {
			out[i] = row
			continue
		}
		resolved, err := svc.ResolveVariant(ctx, row, row.VariantRef)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out[i] = resolved
	}
	return out, nil
}

func printRejection(w io.Writer, err error) {
	var rej *receiving.AssemblyRejection
	if !errors.As(err, &rej) || rej.Kind != receiving.RejectValidationFailed {
		return
	}
	for i, row := range rej.Rows {
		for _, v := range row.ValidationErrors {
			fmt.Fprintf(w, "row %d (%s): %s\n", i+1, row.DisplayName(), v)
		}
	}
}

func printReport(w io.Writer, report receiving.BatchReport, fin receiving.Finalization) {
	fmt.Fprintf(w, "applied %d of %d item(s)\n", report.Succeeded, report.Total)
	for _, item := range report.FailedItems {
		fmt.Fprintf(w, "  FAILED %s [%s]: %s\n", item.DisplayName, item.Kind, item.Error)
	}
	if fin.Warning != "" {
		fmt.Fprintf(w, "warning: %s\n", fin.Warning)
	}
}
