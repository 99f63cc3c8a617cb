package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/ipquiz/internal/catalog"
)

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Check or change the admin PIN",
}

var pinCheckCmd = &cobra.Command{
	Use:   "check <pin>",
	Short: "Exit non-zero unless pin is the admin PIN",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.gate.Verify(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "PIN OK")
		return nil
	},
}

var pinSetCmd = &cobra.Command{
	Use:   "set <new-pin>",
	Short: "Change the admin PIN",
	Long: fmt.Sprintf(`Set replaces the admin PIN after checking the current one, passed with
--pin or IPQUIZ_PIN. A fresh install uses %s.`, catalog.DefaultPIN),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := catalog.ValidatePIN(args[0]); err != nil {
			return err
		}
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()
		if err := rt.requirePIN(cmd); err != nil {
			return err
		}

		current, _ := cmd.Flags().GetString("pin")
		if current == "" {
			current = envPIN()
		}
		return reportMutation(cmd.OutOrStdout(), rt.gate.Change(cmd.Context(), current, args[0]), "PIN changed.")
	},
}

func init() {
	addPINFlag(pinSetCmd)
	pinCmd.AddCommand(pinCheckCmd)
	pinCmd.AddCommand(pinSetCmd)
}
