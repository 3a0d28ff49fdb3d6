package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bote/internal/importer"
	"github.com/cleared-dev/bote/internal/ledger"
	"github.com/cleared-dev/bote/internal/logger"
	"github.com/cleared-dev/bote/internal/model"
	"github.com/cleared-dev/bote/internal/mutationlog"
	"github.com/cleared-dev/bote/internal/reconcile"
)

// statement is one bank export to reconcile.
type statement struct {
	name     string
	path     string
	imported bool // lives in import/ and can be marked processed
}

func newReconcileCommand(opts *globalOptions) *cobra.Command {
	var (
		confirmAll bool
		confirm    []string
	)

	cmd := &cobra.Command{
		Use:   "reconcile [statement.csv ...]",
		Short: "Match pending payments and advances against bank statements",
		Long: "Match pending payments and advances against the inflows of bank statements.\n" +
			"Without arguments every CSV in import/ is read. Statements fully reconciled with\n" +
			"--confirm-all are moved to import/processed/.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ctx, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			defer p.close(ctx)
			log := logger.FromContext(ctx)

			stmts, err := statements(p.root, args)
			if err != nil {
				return err
			}
			if len(stmts) == 0 {
				fmt.Fprintln(p.out, "No statements to reconcile. Drop bank CSV exports into import/.")
				return nil
			}

			parser := &importer.Parser{Location: time.Local}
			var movements []model.BankMovement
			for _, s := range stmts {
				mv, err := parseStatementFile(parser, s.path)
				if err != nil {
					return err
				}
				log.Info().Str("file", s.name).Int("inflows", len(mv)).Msg("statement parsed")
				movements = append(movements, mv...)
			}

			roster, err := p.roster(ctx)
			if err != nil {
				return err
			}
			all, err := p.journal(roster).List(ctx)
			if err != nil {
				return err
			}
			records := p.matcher().Build(ledger.PendingTransactions(all), movements, roster.All(), all)
			if err := printRecords(p.out, records); err != nil {
				return err
			}

			session := reconcile.NewSession(p.store, records)
			var out reconcile.Outcome
			for _, ref := range confirm {
				r, ok := findRecord(session.Records(), ref)
				if !ok {
					return fmt.Errorf("confirming %s: %w", ref, reconcile.ErrNotInSession)
				}
				if err := session.Confirm(ctx, r.Transaction.ID); err != nil {
					if !r.Matched() {
						return err
					}
					out.Failed = append(out.Failed, reconcile.Failure{Record: r, Err: err})
					continue
				}
				out.Confirmed = append(out.Confirmed, r)
			}
			if confirmAll {
				bulk := session.ConfirmAll(ctx)
				out.Confirmed = append(out.Confirmed, bulk.Confirmed...)
				out.Failed = append(out.Failed, bulk.Failed...)
			}

			if len(out.Failed) > 0 {
				if err := mutationlog.Append(p.root, mutationlog.FromOutcome(time.Now(), out)); err != nil {
					log.Warn().Err(err).Msg("writing failed mutation log")
				}
			}
			if confirmAll && len(out.Failed) == 0 {
				for _, s := range stmts {
					if !s.imported {
						continue
					}
					if err := importer.MarkProcessed(p.root, s.name); err != nil {
						return err
					}
				}
			}
			if len(out.Confirmed) > 0 || len(out.Failed) > 0 {
				fmt.Fprintf(p.out, "\nConfirmed %d, failed %d\n", len(out.Confirmed), len(out.Failed))
				p.commit(ctx, fmt.Sprintf("reconcile: verify %d transactions", len(out.Confirmed)), "import", "logs")
			}
			if err := out.Err(); err != nil {
				return fmt.Errorf("failed writes logged to %s: %w", mutationlog.Path, err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmAll, "confirm-all", false, "verify every matched transaction")
	cmd.Flags().StringArrayVar(&confirm, "confirm", nil, "verify one matched transaction by ID (repeatable)")

	return cmd
}

func statements(root string, args []string) ([]statement, error) {
	if len(args) > 0 {
		out := make([]statement, 0, len(args))
		for _, a := range args {
			out = append(out, statement{name: filepath.Base(a), path: a})
		}
		return out, nil
	}
	files, err := importer.Scan(root)
	if err != nil {
		return nil, err
	}
	out := make([]statement, 0, len(files))
	for _, f := range files {
		out = append(out, statement{name: f.Name, path: f.Path, imported: true})
	}
	return out, nil
}

func parseStatementFile(parser *importer.Parser, path string) ([]model.BankMovement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	mv, err := parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return mv, nil
}

func findRecord(records []reconcile.Record, ref string) (reconcile.Record, bool) {
	for _, r := range records {
		if r.Transaction.ID == ref || r.Transaction.TransactionID == ref {
			return r, true
		}
	}
	return reconcile.Record{}, false
}

func printRecords(w io.Writer, records []reconcile.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No pending payments or advances.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TRANSACTION\tMEMBER\tAMOUNT\tCONFIDENCE\tBANK DATE\tBANK AMOUNT\tBANK DESCRIPTION")
	for _, r := range records {
		bankDate, bankAmount := "", ""
		if r.BankMatch != nil {
			bankDate = r.BankMatch.Date
			bankAmount = r.BankMatch.Amount.StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Transaction.TransactionID, r.MemberName, r.Transaction.Amount.StringFixed(2),
			r.Confidence, bankDate, bankAmount, r.CleanDescription)
	}
	return tw.Flush()
}
