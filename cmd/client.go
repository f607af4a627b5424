package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"paxos/submitter"
)

func init() {
	rootCmd.AddCommand(clientCmd)
}

var clientCmd = &cobra.Command{
	Use:   "client <id>",
	Short: "Run a client that submits integer values from stdin",
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

		logger := newLogger("client", id)
		s, err := submitter.New(id, cfg.Proposers, logger)
		if err != nil {
			return err
		}
		defer s.Close()

		return s.Run(os.Stdin)
	},
}
