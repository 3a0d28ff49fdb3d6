package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bote/internal/journal"
	"github.com/cleared-dev/bote/internal/ledger"
	"github.com/cleared-dev/bote/internal/model"
	"github.com/cleared-dev/bote/internal/store"
)

const dateLayout = "2006-01-02"

func newTxCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Record and manage transactions",
	}
	cmd.AddCommand(
		newTxAddCommand(opts),
		newTxCheckoutCommand(opts),
		newTxListCommand(opts),
		newTxEditCommand(opts),
		newTxToggleCommand(opts),
		newTxVerifyCommand(opts),
		newTxDeleteCommand(opts),
	)
	return cmd
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q: %w", s, err)
	}
	return d, nil
}

func parseType(s string) (model.TransactionType, error) {
	return model.ParseTransactionType(strings.ToUpper(strings.TrimSpace(s)))
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

func newTxAddCommand(opts *globalOptions) *cobra.Command {
	var (
		memberID    int
		description string
		guest       bool
		verified    bool
		date        string
	)

	cmd := &cobra.Command{
		Use:   "add <type> <amount>",
		Short: "Record a consumption, payment, advance or pot purchase",
		Long: "Record a transaction. <type> is one of CONSUMPTION, PAYMENT, ADVANCE or PURCHASE_BOTE.\n" +
			"Payments and advances stay pending until verified against the bank.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := parseType(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			day, err := parseDate(date)
			if err != nil {
				return err
			}

			p, ctx, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			defer p.close(ctx)

			roster, err := p.roster(ctx)
			if err != nil {
				return err
			}
			params := journal.AddParams{
				Type:        typ,
				Amount:      amount,
				MemberID:    memberID,
				Description: description,
				IsGuest:     guest,
				Date:        day,
			}
			if cmd.Flags().Changed("verified") {
				params.Verified = &verified
			}

			tx, err := p.journal(roster).Add(ctx, params)
			if err != nil {
				return err
			}
			p.commit(ctx, "tx: add "+tx.TransactionID)
			fmt.Fprintf(p.out, "Recorded %s %s %s\n", tx.TransactionID, tx.Type, tx.Amount.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().IntVarP(&memberID, "member", "m", 0, "member ID (required)")
	_ = cmd.MarkFlagRequired("member")
	cmd.Flags().StringVarP(&description, "desc", "d", "", "description")
	cmd.Flags().BoolVar(&guest, "guest", false, "consumption made on behalf of a guest")
	cmd.Flags().BoolVar(&verified, "verified", false, "override the default verified flag")
	cmd.Flags().StringVar(&date, "date", "", "date embedded in the transaction ID (YYYY-MM-DD, default today)")

	return cmd
}

// parseCartItem parses "product:price[:quantity]".
func parseCartItem(s string, guest bool) (journal.CartItem, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
		return journal.CartItem{}, fmt.Errorf("item %q: want product:price[:quantity]", s)
	}
	price, err := parseAmount(parts[1])
	if err != nil {
		return journal.CartItem{}, fmt.Errorf("item %q: %w", s, err)
	}
	qty := 1
	if len(parts) == 3 {
		if qty, err = strconv.Atoi(parts[2]); err != nil || qty < 1 {
			return journal.CartItem{}, fmt.Errorf("item %q: quantity must be a positive integer", s)
		}
	}
	return journal.CartItem{Product: parts[0], Price: price, Quantity: qty, Guest: guest}, nil
}

func newTxCheckoutCommand(opts *globalOptions) *cobra.Command {
	var (
		memberID   int
		items      []string
		guestItems []string
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Charge a cart of products to a member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cart journal.Cart
			for _, raw := range items {
				it, err := parseCartItem(raw, false)
				if err != nil {
					return err
				}
				cart.Add(it)
			}
			for _, raw := range guestItems {
				it, err := parseCartItem(raw, true)
				if err != nil {
					return err
				}
				cart.Add(it)
			}
			if cart.Empty() {
				return fmt.Errorf("cart is empty: pass --item or --guest-item")
			}

			p, ctx, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			defer p.close(ctx)

			roster, err := p.roster(ctx)
			if err != nil {
				return err
			}
			created, err := p.journal(roster).Checkout(ctx, memberID, &cart)
			for _, tx := range created {
				fmt.Fprintf(p.out, "Recorded %s %s (%s)\n", tx.TransactionID, tx.Amount.StringFixed(2), tx.Description)
			}
			if len(created) > 0 {
				p.commit(ctx, fmt.Sprintf("tx: checkout member %d", memberID))
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&memberID, "member", "m", 0, "member ID (required)")
	_ = cmd.MarkFlagRequired("member")
	cmd.Flags().StringArrayVar(&items, "item", nil, "product:price[:quantity] (repeatable)")
	cmd.Flags().StringArrayVar(&guestItems, "guest-item", nil, "product:price[:quantity] for a guest (repeatable)")

	return cmd
}

func newTxListCommand(opts *globalOptions) *cobra.Command {
	var (
		memberID int
		pending  bool
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fromT, err := parseDate(from)
			if err != nil {
				return err
			}
			toT, err := parseDate(to)
			if err != nil {
				return err
			}
			if !toT.IsZero() {
				toT = toT.AddDate(0, 0, 1)
			}

			p, ctx, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			defer p.close(ctx)

			roster, err := p.roster(ctx)
			if err != nil {
				return err
			}
			txs, err := p.journal(roster).List(ctx)
			if err != nil {
				return err
			}
			if pending {
				txs = ledger.PendingTransactions(txs)
			}
			txs = ledger.InRange(txs, fromT, toT)
			if cmd.Flags().Changed("member") {
				txs = filterMember(txs, memberID)
			}
			return printTransactions(p.out, txs, roster.Alias)
		},
	}

	cmd.Flags().IntVarP(&memberID, "member", "m", 0, "only this member")
	cmd.Flags().BoolVar(&pending, "pending", false, "only unverified payments and advances")
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD)")

	return cmd
}

func filterMember(txs []model.Transaction, memberID int) []model.Transaction {
	var out []model.Transaction
	for _, tx := range txs {
		if tx.MemberID == memberID {
			out = append(out, tx)
		}
	}
	return out
}

func printTransactions(w io.Writer, txs []model.Transaction, alias func(int) string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TRANSACTION\tTYPE\tAMOUNT\tMEMBER\tVERIFIED\tDATE\tDESCRIPTION\tDOC")
	for _, tx := range txs {
		date := ""
		if !tx.Timestamp.IsZero() {
			date = tx.Timestamp.Local().Format("2006-01-02 15:04")
		}
		desc := tx.Description
		if tx.IsGuest {
			desc = strings.TrimSpace("[guest] " + desc)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\t%s\t%s\n",
			tx.TransactionID, tx.Type, tx.Amount.StringFixed(2), alias(tx.MemberID), tx.Verified, date, desc, tx.ID)
	}
	return tw.Flush()
}

func newTxEditCommand(opts *globalOptions) *cobra.Command {
	var (
		typ, amount, description, bankID string
		memberID                         int
		guest, verified                  bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a transaction by document or transaction ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch store.TransactionPatch
			flags := cmd.Flags()
			if flags.Changed("type") {
				t, err := parseType(typ)
				if err != nil {
					return err
				}
				patch.Type = &t
			}
			if flags.Changed("amount") {
				a, err := parseAmount(amount)
				if err != nil {
					return err
				}
				patch.Amount = &a
			}
			if flags.Changed("member") {
				patch.MemberID = &memberID
			}
			if flags.Changed("desc") {
				patch.Description = &description
			}
			if flags.Changed("bank-id") {
				patch.BankID = &bankID
			}
			if flags.Changed("guest") {
				patch.IsGuest = &guest
			}
			if flags.Changed("verified") {
				patch.Verified = &verified
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to change")
			}

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
			tx, err := svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := svc.Update(ctx, tx.ID, patch); err != nil {
				return err
			}
			p.commit(ctx, "tx: edit "+tx.TransactionID)
			fmt.Fprintf(p.out, "Updated %s\n", tx.TransactionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "transaction type")
	cmd.Flags().StringVar(&amount, "amount", "", "amount")
	cmd.Flags().IntVarP(&memberID, "member", "m", 0, "member ID")
	cmd.Flags().StringVarP(&description, "desc", "d", "", "description")
	cmd.Flags().StringVar(&bankID, "bank-id", "", "linked bank movement")
	cmd.Flags().BoolVar(&guest, "guest", false, "guest consumption")
	cmd.Flags().BoolVar(&verified, "verified", false, "verified flag")

	return cmd
}

func newTxToggleCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a transaction's verified flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ctx, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			defer p.close(ctx)

			roster, err := p.roster(ctx)
			if err != nil {
				return err
			}
			verified, err := p.journal(roster).ToggleVerified(ctx, args[0])
			if err != nil {
				return err
			}
			p.commit(ctx, "tx: toggle "+args[0])
			fmt.Fprintf(p.out, "%s verified=%t\n", args[0], verified)
			return nil
		},
	}
}

func newTxVerifyCommand(opts *globalOptions) *cobra.Command {
	var bankID string

	cmd := &cobra.Command{
		Use:   "verify <id>",
		Short: "Mark a transaction verified, optionally linking a bank movement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			tx, err := svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := svc.Verify(ctx, tx.ID, bankID); err != nil {
				return err
			}
			p.commit(ctx, "tx: verify "+tx.TransactionID)
			fmt.Fprintf(p.out, "Verified %s\n", tx.TransactionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&bankID, "bank-id", "", "bank movement ID")

	return cmd
}

func newTxDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			tx, err := svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := svc.Delete(ctx, tx.ID); err != nil {
				return err
			}
			p.commit(ctx, "tx: delete "+tx.TransactionID)
			fmt.Fprintf(p.out, "Deleted %s\n", tx.TransactionID)
			return nil
		},
	}
}
