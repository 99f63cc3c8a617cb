package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/ipquiz/internal/catalog"
	"github.com/abhisek/ipquiz/internal/draft"
	"github.com/abhisek/ipquiz/internal/llm"
	"github.com/abhisek/ipquiz/internal/quiz"
	"github.com/abhisek/ipquiz/internal/store"
)

var questionCmd = &cobra.Command{
	Use:     "question",
	Aliases: []string{"q"},
	Short:   "List and edit questions in the bank",
}

var questionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions, optionally for one topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		topic, _ := cmd.Flags().GetString("topic")
		bank := rt.catalog.Bank()
		if topic != "" {
			bank = rt.catalog.ByTopic(topic)
		}

		out := cmd.OutOrStdout()
		if len(bank) == 0 {
			fmt.Fprintln(out, "No questions found.")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTOPIC\tLEVEL\tKIND\tPROMPT")
		for _, q := range bank {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				shortID(q.ID), q.Topic, q.Level, q.Kind(), truncate(firstLine(q.Prompt), 48))
		}
		return tw.Flush()
	},
}

var questionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one question in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		q, err := findQuestion(rt.catalog, args[0])
		if err != nil {
			return err
		}
		printQuestion(cmd.OutOrStdout(), q)
		return nil
	},
}

var questionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a question",
	Example: `  ipquiz question add --pin 1234 --topic Routing --level B --kind multiple-choice \
    --prompt "Which protocol is link-state?" --option RIP --option OSPF --correct 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()
		if err := rt.requirePIN(cmd); err != nil {
			return err
		}

		q, err := questionFromFlags(cmd)
		if err != nil {
			return err
		}
		saved, err := rt.catalog.Save(cmd.Context(), q)
		if saved.ID == "" {
			return err
		}
		return reportMutation(cmd.OutOrStdout(), err, "Added question "+saved.ID)
	},
}

var questionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a question",
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

		q, err := findQuestion(rt.catalog, args[0])
		if err != nil {
			return err
		}
		return reportMutation(cmd.OutOrStdout(), rt.catalog.Delete(cmd.Context(), q.ID),
			"Deleted question "+q.ID)
	},
}

var questionImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a bank document",
	Long: `Import reads a bank document (the format written by export). By default the
questions and hints in the file replace the whole bank. With --merge they are
added to it, replacing questions with the same ID.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		doc, err := store.DecodeDocument(raw)
		if err != nil {
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

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		merge, _ := cmd.Flags().GetBool("merge")
		if !merge {
			err := rt.catalog.Replace(ctx, doc.Questions, doc.Hints)
			return reportMutation(out, err,
				fmt.Sprintf("Imported %d questions and %d hints.", len(doc.Questions), len(doc.Hints)))
		}

		for _, q := range doc.Questions {
			if _, err := rt.catalog.Save(ctx, q); err != nil {
				return fmt.Errorf("question %s: %w", q.ID, err)
			}
		}
		for topic, text := range doc.Hints {
			if err := rt.catalog.SetHint(ctx, topic, text); err != nil {
				return fmt.Errorf("hint %s: %w", topic, err)
			}
		}
		fmt.Fprintf(out, "Merged %d questions and %d hints.\n", len(doc.Questions), len(doc.Hints))
		return nil
	},
}

var questionExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the bank and hints as a JSON document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		raw, err := store.EncodeDocument(&store.Document{
			Questions: rt.catalog.Bank(),
			Hints:     rt.catalog.Hints(),
		})
		if err != nil {
			return err
		}
		if len(args) == 0 || args[0] == "-" {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return err
		}
		if err := store.EnsureDir(args[0]); err != nil {
			return err
		}
		if err := os.WriteFile(args[0], append(raw, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d questions to %s\n", len(rt.catalog.Bank()), args[0])
		return nil
	},
}

var questionDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Ask the configured LLM to draft a question",
	Long: `Draft asks the configured LLM for a new question in a topic and prints it.
Nothing is written unless --save is given, which needs the admin PIN.`,
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

		topic, _ := cmd.Flags().GetString("topic")
		kindVal, _ := cmd.Flags().GetString("kind")
		levelVal, _ := cmd.Flags().GetString("level")
		guidance, _ := cmd.Flags().GetString("guidance")
		kind, err := quiz.ParseKind(kindVal)
		if err != nil {
			return err
		}
		level, err := quiz.ParseLevel(levelVal)
		if err != nil {
			return err
		}

		drafter, err := newDrafter(cmd, rt)
		if err != nil {
			return err
		}

		in := draft.Input{Topic: topic, Kind: kind, Level: level, Guidance: guidance}
		in.Hint, _ = rt.catalog.Hint(topic)
		for _, q := range rt.catalog.ByTopic(topic) {
			in.Existing = append(in.Existing, q.Prompt)
		}

		q, err := drafter.Draft(cmd.Context(), in)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printQuestion(out, q)
		if !save {
			return nil
		}
		saved, err := rt.catalog.Save(cmd.Context(), q)
		if saved.ID == "" {
			return err
		}
		return reportMutation(out, err, "\nSaved as "+saved.ID)
	},
}

func newDrafter(cmd *cobra.Command, rt *runtime) (*draft.Drafter, error) {
	provider, err := llm.NewProvider(cmd.Context(), llm.ConfigFromEnv(), rt.repo.Events(), rt.log)
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}
	return draft.New(provider, draft.DefaultConfig(), rt.log), nil
}

func questionFromFlags(cmd *cobra.Command) (quiz.Question, error) {
	topic, _ := cmd.Flags().GetString("topic")
	kindVal, _ := cmd.Flags().GetString("kind")
	levelVal, _ := cmd.Flags().GetString("level")
	prompt, _ := cmd.Flags().GetString("prompt")
	options, _ := cmd.Flags().GetStringArray("option")
	correct, _ := cmd.Flags().GetIntSlice("correct")
	reference, _ := cmd.Flags().GetString("reference")

	kind, err := quiz.ParseKind(kindVal)
	if err != nil {
		return quiz.Question{}, err
	}
	level, err := quiz.ParseLevel(levelVal)
	if err != nil {
		return quiz.Question{}, err
	}

	q := quiz.New(topic, kind, level, prompt)
	switch b := q.Body.(type) {
	case *quiz.Choice:
		b.Options = options
		// --correct is 1-based to match the A/B/C... numbering players see.
		for _, c := range correct {
			b.Correct = append(b.Correct, c-1)
		}
		b.Multi = len(correct) > 1
	case *quiz.Open:
		if len(options) > 0 || len(correct) > 0 {
			return quiz.Question{}, fmt.Errorf("--option and --correct apply to multiple-choice questions only")
		}
		b.Reference = reference
	}
	return q, nil
}

// findQuestion resolves a full ID or a unique prefix of at least 4 characters.
func findQuestion(cat *catalog.Catalog, ref string) (quiz.Question, error) {
	if q, ok := cat.Question(ref); ok {
		return q, nil
	}
	if len(ref) < 4 {
		return quiz.Question{}, fmt.Errorf("%w: %s", catalog.ErrUnknownQuestion, ref)
	}
	var found []quiz.Question
	for _, q := range cat.Bank() {
		if strings.HasPrefix(q.ID, ref) {
			found = append(found, q)
		}
	}
	switch len(found) {
	case 0:
		return quiz.Question{}, fmt.Errorf("%w: %s", catalog.ErrUnknownQuestion, ref)
	case 1:
		return found[0], nil
	default:
		return quiz.Question{}, errors.New("ambiguous question ID prefix " + ref)
	}
}

func printQuestion(w io.Writer, q quiz.Question) {
	if q.ID != "" {
		fmt.Fprintf(w, "ID:     %s\n", q.ID)
	}
	fmt.Fprintf(w, "Topic:  %s\n", q.Topic)
	fmt.Fprintf(w, "Level:  %s (%d pt)\n", q.Level, q.Points())
	fmt.Fprintf(w, "Kind:   %s\n", q.Kind().Label())
	fmt.Fprintln(w)
	fmt.Fprintln(w, q.Prompt)

	if c, ok := q.Choice(); ok {
		fmt.Fprintln(w)
		for i, opt := range c.Options {
			mark := " "
			if c.IsCorrect(i) {
				mark = "*"
			}
			fmt.Fprintf(w, "  %s %c. %s\n", mark, 'A'+rune(i%26), opt)
		}
	}
	if o, ok := q.Open(); ok && o.Reference != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Reference:")
		fmt.Fprintln(w, o.Reference)
	}
}

func shortID(id string) string {
	return truncate(id, 8)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}

func init() {
	questionListCmd.Flags().String("topic", "", "Only list questions in this topic")

	for _, c := range []*cobra.Command{questionAddCmd, questionDraftCmd} {
		c.Flags().String("topic", "", "Topic (required)")
		c.Flags().String("kind", string(quiz.KindMultipleChoice), "multiple-choice, fill-in-blank, short-answer or reading-comprehension")
		c.Flags().String("level", "B", "Difficulty level: S, A, B or C")
		_ = c.MarkFlagRequired("topic")
	}
	questionAddCmd.Flags().String("prompt", "", "Question text (required)")
	questionAddCmd.Flags().StringArray("option", nil, "Answer option; repeat for each option")
	questionAddCmd.Flags().IntSlice("correct", nil, "1-based number of a correct option; repeat or comma-separate")
	questionAddCmd.Flags().String("reference", "", "Reference answer for manually graded kinds")
	_ = questionAddCmd.MarkFlagRequired("prompt")

	questionDraftCmd.Flags().String("guidance", "", "Extra instructions for the draft")
	questionDraftCmd.Flags().Bool("save", false, "Save the draft to the bank")

	questionImportCmd.Flags().Bool("merge", false, "Add to the bank instead of replacing it")

	addPINFlag(questionAddCmd, questionDeleteCmd, questionImportCmd, questionDraftCmd)

	questionCmd.AddCommand(questionListCmd)
	questionCmd.AddCommand(questionShowCmd)
	questionCmd.AddCommand(questionAddCmd)
	questionCmd.AddCommand(questionDeleteCmd)
	questionCmd.AddCommand(questionImportCmd)
	questionCmd.AddCommand(questionExportCmd)
	questionCmd.AddCommand(questionDraftCmd)
}
