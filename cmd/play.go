package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/ipquiz/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the quiz in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		splash, _ := cmd.Flags().GetBool("splash")
		return runApp(cmd, splash)
	},
}

func init() {
	playCmd.Flags().Bool("splash", false, "Show the welcome animation first")
}

func runApp(cmd *cobra.Command, splash bool) error {
	rt, err := openRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.log.WithField("questions", len(rt.catalog.Bank())).Info("Starting terminal UI")
	return app.Run(app.Options{
		Catalog: rt.catalog,
		Gate:    rt.gate,
		Events:  rt.repo.Events(),
		Log:     rt.log,
		Splash:  splash,
	})
}
