package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"paxos/paxos"
)

func init() {
	rootCmd.AddCommand(acceptorCmd)
}

var acceptorCmd = &cobra.Command{
	Use:   "acceptor <id>",
	Short: "Run an acceptor role instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return usageAndExit(cmd)
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		cfg, done, err := loadConfig()
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		logger := newLogger("acceptor", id)
		a, err := paxos.NewAcceptor(id, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return a.Run(ctx)
	},
}
