package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bountyhub/bountyhub/internal/config"
	"github.com/bountyhub/bountyhub/internal/service"
	"github.com/bountyhub/bountyhub/pkg/bounty"
	"github.com/bountyhub/bountyhub/pkg/integrations/github"
)

// bountyCommand creates the bounty command with subcommands.
func (c *CLI) bountyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bounty",
		Short: "Manage bounties on GitHub issues",
		Long: `Open bounties on issues, record payouts, and list bounty state.

Merges are normally detected by the webhook on watched repositories;
the merged subcommand exists for manual correction.`,
	}

	cmd.AddCommand(c.bountyOpenCommand())
	cmd.AddCommand(c.bountyMergedCommand())
	cmd.AddCommand(c.bountyPaidCommand())
	cmd.AddCommand(c.bountyCancelCommand())
	cmd.AddCommand(c.bountyListCommand())

	return cmd
}

// bountyOpenCommand creates the "bounty open" subcommand.
func (c *CLI) bountyOpenCommand() *cobra.Command {
	var (
		configPath string
		amount     string
		currency   string
	)

	cmd := &cobra.Command{
		Use:   "open owner/repo#number",
		Short: "Open a bounty on an issue",
		Long: `Fund a bounty on an open issue. A status comment is posted on the
issue announcing the reward.

The amount is given in decimal form, e.g. --amount 25.00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, repo, number, err := github.ParseIssueRef(args[0])
			if err != nil {
				return err
			}
			cents, err := parseAmount(amount)
			if err != nil {
				return err
			}

			client, sess, err := apiClient(ctx)
			if err != nil {
				return err
			}
			svc, store, _, err := c.newService(ctx, configPath)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			spinner := newSpinnerWithContext(ctx, "Opening bounty...")
			spinner.Start()
			b, err := svc.OpenBounty(ctx, client, service.OpenParams{
				Owner:       owner,
				Repo:        repo,
				IssueNumber: number,
				AmountCents: cents,
				Currency:    currency,
				Funder:      sess.User.Login,
			})
			if err != nil {
				spinner.StopWithError("Could not open bounty")
				return err
			}
			spinner.Stop()

			printSuccess("Opened %s bounty on %s", b.Amount(), b.IssueRef())
			printKeyValue("Bounty ID", b.ID)
			if b.IssueTitle != "" {
				printKeyValue("Issue", b.IssueTitle)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to config file")
	cmd.Flags().StringVar(&amount, "amount", "", "bounty amount, e.g. 25.00 (required)")
	cmd.Flags().StringVar(&currency, "currency", "USD", "ISO 4217 currency code")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

// bountyMergedCommand creates the "bounty merged" subcommand.
func (c *CLI) bountyMergedCommand() *cobra.Command {
	var (
		configPath string
		claimant   string
		prNumber   int
	)

	cmd := &cobra.Command{
		Use:   "merged bounty-id",
		Short: "Mark a bounty as merged (manual correction)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, _, err := apiClient(ctx)
			if err != nil {
				return err
			}
			svc, store, _, err := c.newService(ctx, configPath)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			b, err := svc.MarkMerged(ctx, client, args[0], claimant, prNumber)
			if err != nil {
				return err
			}
			printSuccess("Bounty on %s marked merged", b.IssueRef())
			if b.Claimant != "" {
				printKeyValue("Claimant", "@"+b.Claimant)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to config file")
	cmd.Flags().StringVar(&claimant, "claimant", "", "GitHub login of the contributor to credit")
	cmd.Flags().IntVar(&prNumber, "pr", 0, "pull request number that resolved the issue")
	return cmd
}

// bountyPaidCommand creates the "bounty paid" subcommand.
func (c *CLI) bountyPaidCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "paid bounty-id",
		Short: "Record that a bounty was paid out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, _, err := apiClient(ctx)
			if err != nil {
				return err
			}
			svc, store, _, err := c.newService(ctx, configPath)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			b, err := svc.MarkPaid(ctx, client, args[0])
			if err != nil {
				return err
			}
			printSuccess("Bounty on %s paid", b.IssueRef())
			if b.Claimant != "" {
				printKeyValue("Paid to", "@"+b.Claimant)
			}
			printKeyValue("Amount", b.Amount())
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to config file")
	return cmd
}

// bountyCancelCommand creates the "bounty cancel" subcommand.
func (c *CLI) bountyCancelCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cancel bounty-id",
		Short: "Withdraw an open bounty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, _, err := apiClient(ctx)
			if err != nil {
				return err
			}
			svc, store, _, err := c.newService(ctx, configPath)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			b, err := svc.Cancel(ctx, client, args[0])
			if err != nil {
				return err
			}
			printSuccess("Bounty on %s cancelled", b.IssueRef())
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to config file")
	return cmd
}

// bountyListCommand creates the "bounty list" subcommand.
func (c *CLI) bountyListCommand() *cobra.Command {
	var (
		configPath string
		status     string
	)

	cmd := &cobra.Command{
		Use:   "list [owner/repo]",
		Short: "List bounties",
		Long: `List bounties, newest first.

With an owner/repo argument, lists every bounty on that repository.
Without one, lists bounties in the given --status (open by default).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, store, _, err := c.newService(ctx, configPath)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			var bounties []*bounty.Bounty
			if len(args) == 1 {
				owner, repo, err := github.ParseRepoRef(args[0])
				if err != nil {
					return err
				}
				bounties, err = svc.ListByRepo(ctx, owner, repo)
				if err != nil {
					return err
				}
			} else {
				st := bounty.Status(status)
				if !st.Valid() {
					return fmt.Errorf("unknown status %q (want open, merged, paid, or cancelled)", status)
				}
				bounties, err = svc.ListByStatus(ctx, st)
				if err != nil {
					return err
				}
			}

			if len(bounties) == 0 {
				printInfo("No bounties")
				return nil
			}
			for _, b := range bounties {
				printBounty(b)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to config file")
	cmd.Flags().StringVar(&status, "status", "open", "filter by status: open, merged, paid, cancelled")
	return cmd
}

// printBounty prints a single bounty as a compact line.
func printBounty(b *bounty.Bounty) {
	line := "  " + StyleHighlight.Render(b.Amount()) +
		"  " + StyleValue.Render(b.IssueRef()) +
		"  " + StyleDim.Render(string(b.Status))
	if b.Claimant != "" {
		line += "  " + StyleDim.Render("@"+b.Claimant)
	}
	fmt.Println(line)
}

// parseAmount converts a decimal amount string like "25.00" or "5" into
// integer cents.
func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return 0, errors.New("amount is required")
	}

	// ParseUint keeps sign characters out of both parts, so inputs like
	// "-5" or "25.-5" are rejected rather than silently subtracted.
	whole, frac, _ := strings.Cut(s, ".")
	dollars, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	var cents uint64
	switch len(frac) {
	case 0:
	case 1:
		c, err := strconv.ParseUint(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		cents = c * 10
	case 2:
		c, err := strconv.ParseUint(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		cents = c
	default:
		return 0, fmt.Errorf("invalid amount %q: at most two decimal places", s)
	}

	return int64(dollars*100 + cents), nil
}
