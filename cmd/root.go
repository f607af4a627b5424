// Package cmd implements the paxos CLI: `paxos <role> <id>` dispatches
// to one of the four role processes. This is a thin adapter around the
// core engine in package paxos.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	showConfig bool
	quorum     int
)

var rootCmd = &cobra.Command{
	Use:   "paxos <role> <id>",
	Short: "Multicast Paxos atomic broadcast",
	Long: `paxos runs one role of a multi-decree Paxos ensemble: a proposer,
acceptor, learner, or client, identified by a small unsigned id among
its peers. Role membership is resolved through paxos.conf.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to paxos.conf (default: ./paxos.conf)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log per-message protocol diagnostics")
	rootCmd.PersistentFlags().BoolVar(&showConfig, "show-config", false, "print the resolved configuration as YAML and exit")
	rootCmd.PersistentFlags().IntVar(&quorum, "quorum", 2, "acceptor quorum size, floor(|acceptors|/2)+1 for a correctly sized deployment")
}

// usageAndExit prints the subcommand's usage line. Returning nil from a
// RunE after calling this makes Execute exit successfully: a wrong
// argument count is a usage error, not a fatal one.
func usageAndExit(cmd *cobra.Command) error {
	return cmd.Usage()
}
