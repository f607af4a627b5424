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
	rootCmd.AddCommand(proposerCmd)
}

var proposerCmd = &cobra.Command{
	Use:   "proposer <id>",
	Short: "Run a proposer role instance",
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

		logger := newLogger("proposer", id)
		p, err := paxos.NewProposer(id, cfg, quorum, logger)
		if err != nil {
			return err
		}
		defer p.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return p.Run(ctx)
	},
}
