package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ipquiz",
	Short: "Topic quiz: pick up to five questions and answer them",
	Long: `ipquiz is a terminal quiz over a shared question bank. Players pick up to
five questions (at most two per topic), answer them, reveal the references
and get a score by topic and level. Admin commands edit the bank.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, true)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("backend", "", "Storage backend: sqlite, postgres, redis, mongo, remote, file or memory (overrides IPQUIZ_BACKEND)")
	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite database or bank file (overrides IPQUIZ_DB / IPQUIZ_FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides IPQUIZ_LOG_LEVEL)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(questionCmd)
	rootCmd.AddCommand(hintCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
