package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nihei9/lrgen/spec"
)

var showFlags = struct {
	states *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Print a report in a readable format",
		Example: `  lrgen show grammar-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	showFlags.states = cmd.Flags().Bool("states", false, "also print every state's item set")
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	writeReport(report)

	return nil
}

func readReport(path string) (*spec.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the report %s: %w", path, err)
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	report := &spec.Report{}
	err = json.Unmarshal(d, report)
	if err != nil {
		return nil, err
	}

	return report, nil
}

func writeReport(report *spec.Report) {
	pterm.Info.Printf("class: %v, states: %v\n", report.Class, len(report.States))

	pterm.DefaultSection.Println("Productions")
	prodRows := pterm.TableData{{"#", "production"}}
	for _, prod := range report.Productions {
		prodRows = append(prodRows, []string{
			fmt.Sprintf("%v", prod.Number),
			productionText(report, prod),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(prodRows).Render()

	pterm.DefaultSection.Println("Conflicts")
	var conflictRows pterm.TableData
	conflictRows = append(conflictRows, []string{"state", "symbol", "kind", "detail"})
	for _, state := range report.States {
		for _, c := range state.SRConflict {
			detail := fmt.Sprintf("shift %v vs reduce %v", c.State, c.Production)
			if c.AdoptedState != nil {
				detail += fmt.Sprintf(" -> shift %v", *c.AdoptedState)
			} else if c.AdoptedProduction != nil {
				detail += fmt.Sprintf(" -> reduce %v", *c.AdoptedProduction)
			}
			conflictRows = append(conflictRows, []string{
				fmt.Sprintf("%v", state.Number),
				terminalName(report, c.Symbol),
				"shift/reduce",
				detail,
			})
		}
		for _, c := range state.RRConflict {
			conflictRows = append(conflictRows, []string{
				fmt.Sprintf("%v", state.Number),
				terminalName(report, c.Symbol),
				"reduce/reduce",
				fmt.Sprintf("reduce %v vs reduce %v -> reduce %v", c.Production1, c.Production2, c.AdoptedProduction),
			})
		}
	}
	if len(conflictRows) > 1 {
		_ = pterm.DefaultTable.WithHasHeader().WithData(conflictRows).Render()
	} else {
		pterm.Println("no conflicts")
	}

	pterm.DefaultSection.Println("FIRST")
	firstRows := pterm.TableData{{"symbol", "terminals", "empty"}}
	for _, e := range report.First {
		firstRows = append(firstRows, []string{e.Symbol, strings.Join(e.Terminals, " "), fmt.Sprintf("%v", e.Empty)})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(firstRows).Render()

	pterm.DefaultSection.Println("FOLLOW")
	followRows := pterm.TableData{{"symbol", "terminals", "eof"}}
	for _, e := range report.Follow {
		followRows = append(followRows, []string{e.Symbol, strings.Join(e.Terminals, " "), fmt.Sprintf("%v", e.EOF)})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(followRows).Render()

	if *showFlags.states {
		pterm.DefaultSection.Println("States")
		for _, state := range report.States {
			pterm.Printf("state %v\n", state.Number)
			for _, item := range state.Items {
				pterm.Printf("  %v\n", itemText(report, item))
			}
		}
	}
}

func productionText(report *spec.Report, prod *spec.Production) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v →", nonTerminalName(report, prod.LHS))
	if len(prod.RHS) == 0 {
		fmt.Fprintf(&b, " ε")
		return b.String()
	}
	for _, sym := range prod.RHS {
		if sym < 0 {
			fmt.Fprintf(&b, " %v", nonTerminalName(report, sym*-1))
		} else {
			fmt.Fprintf(&b, " %v", terminalName(report, sym))
		}
	}
	return b.String()
}

func itemText(report *spec.Report, item *spec.Item) string {
	prod := report.Productions[item.Production]
	var b strings.Builder
	fmt.Fprintf(&b, "%v →", nonTerminalName(report, prod.LHS))
	for i, sym := range prod.RHS {
		if i == item.Dot {
			fmt.Fprintf(&b, " ・")
		}
		if sym < 0 {
			fmt.Fprintf(&b, " %v", nonTerminalName(report, sym*-1))
		} else {
			fmt.Fprintf(&b, " %v", terminalName(report, sym))
		}
	}
	if item.Dot == len(prod.RHS) {
		fmt.Fprintf(&b, " ・")
	}
	fmt.Fprintf(&b, ", %v", terminalName(report, item.LookAhead))
	return b.String()
}

func terminalName(report *spec.Report, num int) string {
	if num < len(report.Terminals) && report.Terminals[num] != nil {
		return report.Terminals[num].Name
	}
	return fmt.Sprintf("t%v", num)
}

func nonTerminalName(report *spec.Report, num int) string {
	if num < len(report.NonTerminals) && report.NonTerminals[num] != nil {
		return report.NonTerminals[num].Name
	}
	return fmt.Sprintf("n%v", num)
}
