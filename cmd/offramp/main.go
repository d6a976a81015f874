package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"offramp/internal/app/service"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath  string
	metricsFile string
	startChain  uint64
}

// cli owns the app built for the running command.
type cli struct {
	flags rootFlags
	app   *app
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{}
	err := c.rootCommand().ExecuteContext(ctx)
	if closeErr := c.close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if !errors.Is(err, errSilent) && !service.IsValidationError(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "offramp",
		Short:         "Fiatsend offramp client: convert USDT to GHS and pay out to mobile money on Lisk Sepolia",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || (cmd.HasParent() && cmd.Parent().Name() == "completion") {
				return nil
			}
			var err error
			c.app, err = newApp(cmd.Context(), &c.flags)
			return err
		},
	}
	root.PersistentFlags().StringVarP(&c.flags.configPath, "config", "c", "", "path to config.yml (default $OFFRAMP_CONFIG or config/config.yml)")
	root.PersistentFlags().StringVar(&c.flags.metricsFile, "metrics-file", "", "write prometheus counters to this textfile on exit")
	root.PersistentFlags().Uint64Var(&c.flags.startChain, "start-chain", 0, "chain a keyed wallet connects to first (default: target chain)")

	appFn := func() *app { return c.app }
	root.AddCommand(
		newStatusCommand(appFn),
		newSwitchCommand(appFn),
		newBalancesCommand(appFn),
		newKYCCommand(appFn),
		newAccountCommand(appFn),
		newHistoryCommand(appFn),
		newQuoteCommand(appFn),
		newApproveCommand(appFn),
		newConvertCommand(appFn),
		newTransferCommand(appFn),
		newWithdrawCommand(appFn),
		newOnboardCommand(appFn),
	)
	return root
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}
