package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/clair-gutierrez/sitetack/internal/model"
)

var kindsJSON bool

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// kindsCmd lists the PTM, organism and label kinds a model can be chosen by.
var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List PTM, organism and label kinds",
	Long: `Lists every kind by key along with its display name and description.

	<KEY>  <Name>  [sites]`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeKinds(cmd.OutOrStdout(), kindsJSON)
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
	kindsCmd.Flags().BoolVar(&kindsJSON, "json", false, "print the kinds as JSON")
}

func writeKinds(w io.Writer, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"ptms":      model.PtmDict(),
			"organisms": model.OrganismDict(),
			"labels":    model.LabelDict(),
		})
	}

	fmt.Fprintln(w, headingStyle.Render("PTMs"))
	for _, k := range model.PtmKinds() {
		m := k.Metadata()
		fmt.Fprintf(w, "  %s  %s  [%s]\n", keyStyle.Render(k.String()), m.Name, strings.Join(m.Sites, ","))
		fmt.Fprintf(w, "    %s\n", dimStyle.Render(m.Description))
	}
	fmt.Fprintln(w, headingStyle.Render("Organisms"))
	for _, k := range model.OrganismKinds() {
		m := k.Metadata()
		fmt.Fprintf(w, "  %s  %s\n    %s\n", keyStyle.Render(k.String()), m.Name, dimStyle.Render(m.Description))
	}
	fmt.Fprintln(w, headingStyle.Render("Labels"))
	for _, k := range model.LabelKinds() {
		m := k.Metadata()
		fmt.Fprintf(w, "  %s  %s\n    %s\n", keyStyle.Render(k.String()), m.Name, dimStyle.Render(m.Description))
	}
	return nil
}
