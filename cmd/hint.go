package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/ipquiz/internal/quiz"
)

var hintCmd = &cobra.Command{
	Use:   "hint",
	Short: "Manage per-topic hints",
}

var hintListCmd = &cobra.Command{
	Use:   "list",
	Short: "List topics with their hints and question counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		out := cmd.OutOrStdout()
		hints := rt.catalog.Hints()
		topics := quiz.Topics(rt.catalog.Bank(), hints)
		if len(topics) == 0 {
			fmt.Fprintln(out, "No topics yet.")
			return nil
		}
		for _, topic := range topics {
			n := len(rt.catalog.ByTopic(topic))
			fmt.Fprintf(out, "%s (%d)\n", topic, n)
			if h, ok := hints[topic]; ok && strings.TrimSpace(h) != "" {
				for _, line := range strings.Split(strings.TrimSpace(h), "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
			}
		}
		return nil
	},
}

var hintSetCmd = &cobra.Command{
	Use:   "set <topic> <text>",
	Short: "Create or replace a topic hint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()
		if err := rt.requirePIN(cmd); err != nil {
			return err
		}
		return reportMutation(cmd.OutOrStdout(), rt.catalog.SetHint(cmd.Context(), args[0], args[1]),
			"Hint saved for "+strings.TrimSpace(args[0]))
	},
}

var hintDeleteCmd = &cobra.Command{
	Use:   "delete <topic>",
	Short: "Remove a topic hint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()
		if err := rt.requirePIN(cmd); err != nil {
			return err
		}
		if _, ok := rt.catalog.Hint(args[0]); !ok {
			return fmt.Errorf("no hint for topic %q", args[0])
		}
		return reportMutation(cmd.OutOrStdout(), rt.catalog.DeleteHint(cmd.Context(), args[0]),
			"Hint removed for "+args[0])
	},
}

var hintDraftCmd = &cobra.Command{
	Use:   "draft <topic>",
	Short: "Ask the configured LLM to draft a hint from the topic's questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		save, _ := cmd.Flags().GetBool("save")
		if save {
			if err := rt.requirePIN(cmd); err != nil {
				return err
			}
		}

		questions := rt.catalog.ByTopic(args[0])
		if len(questions) == 0 {
			return fmt.Errorf("topic %q has no questions to draft from", args[0])
		}
		drafter, err := newDrafter(cmd, rt)
		if err != nil {
			return err
		}
		hint, err := drafter.DraftHint(cmd.Context(), args[0], questions)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, hint)
		if !save {
			return nil
		}
		return reportMutation(out, rt.catalog.SetHint(cmd.Context(), args[0], hint), "\nHint saved.")
	},
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	hintDraftCmd.Flags().Bool("save", false, "Save the drafted hint")
	addPINFlag(hintSetCmd, hintDeleteCmd, hintDraftCmd)

	hintCmd.AddCommand(hintListCmd)
	hintCmd.AddCommand(hintSetCmd)
	hintCmd.AddCommand(hintDeleteCmd)
	hintCmd.AddCommand(hintDraftCmd)
}
