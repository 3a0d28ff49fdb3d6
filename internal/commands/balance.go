package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bote/internal/ledger"
	"github.com/cleared-dev/bote/internal/model"
)

func newBalanceCommand(opts *globalOptions) *cobra.Command {
	var memberID int

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the pot, pending money and every member's balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, ctx, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			defer p.close(ctx)

			roster, err := p.roster(ctx)
			if err != nil {
				return err
			}
			svc := p.journal(roster)

			if cmd.Flags().Changed("member") {
				m, ok := roster.Get(memberID)
				if !ok {
					return fmt.Errorf("unknown member %d", memberID)
				}
				txs, err := svc.List(ctx)
				if err != nil {
					return err
				}
				printMember(p, m, txs)
				return nil
			}

			snap, err := svc.Summary(ctx, roster.All())
			if err != nil {
				return err
			}
			fmt.Fprintf(p.out, "Pot:        %s\n", snap.Pot.StringFixed(2))
			fmt.Fprintf(p.out, "Pending:    %s\n", snap.Pending.StringFixed(2))
			fmt.Fprintf(p.out, "Total debt: %s\n\n", snap.TotalDebt.StringFixed(2))

			tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tBALANCE\tPENDING PAYMENTS\tPENDING ADVANCES")
			for _, ms := range snap.Members {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", ms.Member.ID, ms.Member.Name,
					ms.Balance.StringFixed(2), ms.PendingPayment.StringFixed(2), ms.PendingAdvance.StringFixed(2))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&memberID, "member", "m", 0, "show one member in detail")

	return cmd
}

func printMember(p *project, m model.Member, txs []model.Transaction) {
	consumed := ledger.MemberConsumption(m.ID, txs)
	fmt.Fprintf(p.out, "%s (%s)\n", m.Name, m.TransactionAlias())
	fmt.Fprintf(p.out, "Balance:          %s\n", ledger.MemberBalance(m.ID, txs).StringFixed(2))
	fmt.Fprintf(p.out, "Pending payments: %s\n", ledger.MemberPendingPayment(m.ID, txs).StringFixed(2))
	fmt.Fprintf(p.out, "Pending advances: %s\n", ledger.MemberPendingAdvance(m.ID, txs).StringFixed(2))
	fmt.Fprintf(p.out, "Consumed:         %s in %d rounds\n", consumed.Total.StringFixed(2), consumed.Count)
}
