package commands

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bote/internal/members"
	"github.com/cleared-dev/bote/internal/model"
)

func newMemberCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage the member roster",
	}
	cmd.AddCommand(newMemberAddCommand(opts), newMemberListCommand(opts), newMemberLoginCommand(opts))
	return cmd
}

func newMemberAddCommand(opts *globalOptions) *cobra.Command {
	var (
		m       model.Member
		portion string
		pin     string
	)

	cmd := &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Add or replace a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("member id %q: %w", args[0], err)
			}
			m.ID = memberID
			m.Name = args[1]
			m.Alias = strings.ToUpper(m.Alias)
			if m.AlcoholPortion, err = model.ParseAlcoholPortion(portion); err != nil {
				return err
			}
			if err := members.Validate(m); err != nil {
				return err
			}
			if pin != "" {
				if m.PINHash, err = members.HashPIN(pin); err != nil {
					return err
				}
			}

			p, ctx, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			defer p.close(ctx)

			if err := p.store.PutMember(ctx, m); err != nil {
				return fmt.Errorf("saving member: %w", err)
			}
			p.commit(ctx, fmt.Sprintf("member: %s", m.Name))
			fmt.Fprintf(p.out, "Saved member %d %s (%s)\n", m.ID, m.Name, m.TransactionAlias())
			return nil
		},
	}

	cmd.Flags().StringVar(&m.Alias, "alias", "", "two-letter alias used in transaction IDs")
	cmd.Flags().StringVar(&m.Bizum, "bizum", "", "payee name shown on bank transfers")
	cmd.Flags().StringSliceVar(&m.FavoriteProducts, "favorite", nil, "favorite product (repeatable)")
	cmd.Flags().StringVar(&portion, "portion", "", "alcohol portion: single, double or none")
	cmd.Flags().StringVar(&pin, "pin", "", "login PIN (at least 4 digits)")

	return cmd
}

func newMemberListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List members",
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

			tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tALIAS\tBIZUM\tPORTION\tPIN")
			for _, m := range roster.All() {
				pinSet := "no"
				if m.PINHash != "" {
					pinSet = "yes"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.TransactionAlias(), m.Bizum, m.AlcoholPortion, pinSet)
			}
			return tw.Flush()
		},
	}
}

func newMemberLoginCommand(opts *globalOptions) *cobra.Command {
	var pin string

	cmd := &cobra.Command{
		Use:   "login <id>",
		Short: "Check a member's PIN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("member id %q: %w", args[0], err)
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
			m, err := members.NewAuthenticator(roster).Authenticate(memberID, pin)
			if err != nil {
				return err
			}
			fmt.Fprintf(p.out, "Welcome, %s\n", m.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "PIN")
	_ = cmd.MarkFlagRequired("pin")

	return cmd
}
