package main

import (
	"bufio"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"offramp/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// errSilent fails a command whose problem the notifier already showed.
var errSilent = errors.New("aborted")

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// printHash reports a mined transaction. The zero hash means the action was
// aborted after a toast and fails the command.
func printHash(cmd *cobra.Command, hash common.Hash) error {
	if hash == (common.Hash{}) {
		fmt.Fprintln(cmd.OutOrStdout(), "No transaction sent.")
		return errSilent
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Transaction:", hash.Hex())
	return nil
}

func newStatusCommand(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the wallet and whether it is on the target network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			addr, connected := a.wallet.Address()
			state := a.guard.State()
			return printJSON(cmd, map[string]any{
				"connected":     connected,
				"address":       addr.Hex(),
				"chainId":       state.CurrentChainID,
				"chainName":     a.networks.NetworkName(state.CurrentChainID),
				"targetChainId": a.target.ChainID,
				"targetName":    a.target.Name,
				"correctChain":  a.guard.IsCorrectChain(),
			})
		},
	}
}

func newSwitchCommand(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "switch",
		Short: "Ask the wallet to switch to the target network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			if a.guard.IsCorrectChain() {
				fmt.Fprintf(cmd.OutOrStdout(), "Already on %s.\n", a.target.Name)
				return nil
			}
			if !a.switcher.SwitchToTarget(cmd.Context()) {
				return errSilent
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to %s.\n", a.target.Name)
			return nil
		},
	}
}

func newBalancesCommand(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show wallet balances and the offramp GHSFIAT reserve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			owner, err := a.owner()
			if err != nil {
				return err
			}
			p, err := a.portfolio.FetchPortfolio(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}
}

func newKYCCommand(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kyc",
		Short: "Show the KYC level and remaining monthly limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			owner, err := a.owner()
			if err != nil {
				return err
			}
			s, err := a.kyc.Status(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"address":      s.Address,
				"level":        s.Level,
				"description":  s.Description,
				"monthlyLimit": formatUnits(s.MonthlyLimit),
				"monthlySpent": formatUnits(s.MonthlySpent),
				"remaining":    formatUnits(s.Remaining),
				"nextLevel":    s.NextLevel,
				"nextLimit":    formatUnits(s.NextLimit),
				"isVerified":   s.IsVerified,
				"canUpgrade":   s.CanUpgrade,
			})
		},
	}
}

func newAccountCommand(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "account [mobile]",
		Short: "Show the connected account, or the wallet registered for a mobile number",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			ctx := cmd.Context()
			if len(args) == 1 {
				wallet, ok := a.accounts.WalletByMobile(ctx, args[0])
				if !ok {
					return printJSON(cmd, map[string]any{"mobile": args[0], "hasAccount": false})
				}
				return printJSON(cmd, map[string]any{"mobile": args[0], "hasAccount": true, "wallet": wallet.Hex()})
			}

			owner, err := a.owner()
			if err != nil {
				return err
			}
			has, err := a.accounts.HasAccount(ctx, owner)
			if err != nil {
				return err
			}
			view := map[string]any{"wallet": owner.Hex(), "hasAccount": has}
			if has {
				if mobile, err := a.accounts.MobileByWallet(ctx, owner); err == nil {
					view["mobile"] = mobile
				} else {
					a.log.Warn("Registered mobile unavailable", "error", err)
				}
			}
			return printJSON(cmd, view)
		},
	}
}

func newHistoryCommand(appFn func() *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List offramps, transfers and withdrawals, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			owner, err := a.owner()
			if err != nil {
				return err
			}
			records, err := a.history.History(cmd.Context(), owner, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, records)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of records, 0 for all")
	return cmd
}

func newQuoteCommand(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quote <ghs>",
		Short: "Price a GHS payout in USDT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := appFn().transfer.Quote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, q)
		},
	}
}

func newApproveCommand(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <ghs>",
		Short: "Approve the USDT needed to convert a GHS amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			q, err := a.transfer.Quote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			hash, err := a.transfer.Approve(cmd.Context(), q.USDTWei)
			if err != nil {
				return err
			}
			return printHash(cmd, hash)
		},
	}
}

func newConvertCommand(appFn func() *app) *cobra.Command {
	var approve bool
	cmd := &cobra.Command{
		Use:   "convert <ghs>",
		Short: "Convert USDT to a GHS payout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			ctx := cmd.Context()
			q, err := a.transfer.Quote(ctx, args[0])
			if err != nil {
				return err
			}
			needs, err := a.transfer.NeedsApproval(ctx, q.USDTWei)
			if err != nil {
				return err
			}
			if needs {
				if !approve {
					return fmt.Errorf("USDT allowance is below %s, run approve first or pass --approve", q.USDTAmount)
				}
				hash, err := a.transfer.Approve(ctx, q.USDTWei)
				if err != nil {
					return err
				}
				if hash == (common.Hash{}) {
					return printHash(cmd, hash)
				}
			}
			hash, err := a.transfer.Convert(ctx, args[0])
			if err != nil {
				return err
			}
			return printHash(cmd, hash)
		},
	}
	cmd.Flags().BoolVar(&approve, "approve", false, "approve the USDT allowance first when it is too low")
	return cmd
}

func newTransferCommand(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <mobile> <ghs>",
		Short: "Send GHSFIAT to the Fiatsend account of a mobile number",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			req, err := a.nftTransfer.Prepare(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sending %s GHS to %s (%s)\n", args[1], req.RecipientMobile, req.Recipient.Hex())
			hash, err := a.nftTransfer.Confirm(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printHash(cmd, hash)
		},
	}
}

func newWithdrawCommand(appFn func() *app) *cobra.Command {
	var phoneNumber string
	cmd := &cobra.Command{
		Use:   "withdraw <ghs>",
		Short: "Burn GHSFIAT for a mobile money payout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			ctx := cmd.Context()
			if phoneNumber != "" {
				if err := a.withdraw.SendOTP(ctx, phoneNumber); err != nil {
					return err
				}
				// Код приходит только после SendOTP, поэтому всегда спрашиваем.
				code, err := prompt(cmd, "Enter the OTP code: ")
				if err != nil {
					return err
				}
				if _, err := a.withdraw.VerifyOTP(ctx, code); err != nil {
					return err
				}
			}
			payout, err := a.withdraw.PayoutNumber(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Payout to %s\n", payout)

			hash, err := a.withdraw.Withdraw(ctx, args[0])
			if err != nil {
				return err
			}
			return printHash(cmd, hash)
		},
	}
	cmd.Flags().StringVar(&phoneNumber, "phone", "", "pay out to this national number instead of the registered one (verified by SMS)")
	return cmd
}

func newOnboardCommand(appFn func() *app) *cobra.Command {
	var country string
	cmd := &cobra.Command{
		Use:   "onboard <mobile>",
		Short: "Verify the mobile number for a wallet without a Fiatsend account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			ctx := cmd.Context()
			needs, err := a.onboarding.NeedsOnboarding(ctx)
			if err != nil {
				return err
			}
			if !needs {
				fmt.Fprintln(cmd.OutOrStdout(), "Account already set up.")
				return nil
			}
			if country == "" {
				country = a.cfg.Offramp.Region
			}

			if _, err := a.onboarding.SendCode(ctx, country, args[0]); err != nil {
				return err
			}
			code, err := prompt(cmd, "Enter the 6-digit code: ")
			if err != nil {
				return err
			}
			verified, err := a.onboarding.Verify(ctx, code)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Verified:", verified)
			return nil
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "ISO country of the number, e.g. GH (default: offramp.region)")
	return cmd
}

func prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func formatUnits(v *big.Int) string {
	s, err := utils.FormatBigInt(v, 18)
	if err != nil {
		return v.String()
	}
	return s
}
