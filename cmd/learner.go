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
	rootCmd.AddCommand(learnerCmd)
}

var learnerCmd = &cobra.Command{
	Use:   "learner <id>",
	Short: "Run a learner role instance",
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

		// Learner stdout is the output contract: learned values only,
		// never diagnostics, regardless of --verbose.
		logger := newLogger("learner", id)
		l, err := paxos.NewLearner(id, cfg, quorum, os.Stdout, logger)
		if err != nil {
			return err
		}
		defer l.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return l.Run(ctx)
	},
}
