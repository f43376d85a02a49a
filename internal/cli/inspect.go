package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	vocabconfig "github.com/cognicore/derisk/pkg/derisk/config"
	"github.com/cognicore/derisk/pkg/derisk/vocab"
)

func newInspectCmd() *cobra.Command {
	var candidates, rulebook string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the normalized candidate terms and rulebook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("candidates") {
				candidates = c.Config.Input.Candidates
			}
			if !cmd.Flags().Changed("rulebook") {
				rulebook = c.Config.Input.Rulebook
			}

			comp, err := (&vocabconfig.Loader{
				CandidatesPath: candidates,
				RulebookPath:   rulebook,
				Logger:         c.Logger,
			}).Load()
			if err != nil {
				return err
			}
			printVocabulary(cmd.OutOrStdout(), comp.Vocabulary)
			fmt.Fprintln(cmd.OutOrStdout())
			printRulebook(cmd.OutOrStdout(), comp.Rulebook)
			return nil
		},
	}
	cmd.Flags().StringVar(&candidates, "candidates", "", "derisking candidates (CSV, TSV, HTML or YAML)")
	cmd.Flags().StringVar(&rulebook, "rulebook", "", "rulebook (CSV, TSV, HTML or YAML)")
	return cmd
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	return t
}

func printVocabulary(w io.Writer, v *vocab.Vocabulary) {
	st := v.Stats()
	fmt.Fprintf(w, "Candidate terms: %d (%d short, %d distinct, %d reserved skipped, %d blank skipped)\n",
		st.Terms, st.ShortTerms, st.DistinctNames, st.Reserved, st.Blank)

	t := newTable(w, "Name", "Normalized", "Length", "Match", "Category")
	for _, term := range v.Terms() {
		mode := "contains"
		if term.Short() {
			mode = "boundary"
		}
		t.Append([]string{term.Name, term.Normalized, strconv.Itoa(term.Length), mode, term.Category})
	}
	t.Render()
}

func printRulebook(w io.Writer, rb *vocab.Rulebook) {
	fmt.Fprintf(w, "Rulebook elements: %d in %d categories (%d skipped)\n",
		rb.Len(), len(rb.Categories()), rb.Skipped())

	t := newTable(w, "Category", "Element", "Normalized", "Length")
	for _, cat := range rb.Categories() {
		for _, el := range rb.Elements(cat) {
			t.Append([]string{cat, el.Element, el.Normalized, strconv.Itoa(el.Length)})
		}
	}
	t.Render()
}
