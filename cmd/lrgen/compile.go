package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mlspec "github.com/nihei9/maleeni/spec"
	"github.com/spf13/cobra"

	verr "github.com/nihei9/lrgen/error"
	"github.com/nihei9/lrgen/grammar"
	"github.com/nihei9/lrgen/spec"
)

var compileFlags = struct {
	output  *string
	class   *string
	lexSpec *string
	skip    *[]string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile",
		Short:   "Compile a grammar into a parsing table",
		Example: `  lrgen compile grammar.txt --lex-spec lexspec.json -o grammar.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.class = cmd.Flags().String("class", "lalr", "table construction: lalr or lr1")
	compileFlags.lexSpec = cmd.Flags().String("lex-spec", "", "maleeni lexical specification file path")
	compileFlags.skip = cmd.Flags().StringSlice("skip", nil, "lexical kinds the parser discards, like whitespace")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) (retErr error) {
	srcName := "stdin"
	var src io.Reader = os.Stdin
	if len(args) > 0 {
		srcName = args[0]
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("Cannot open the grammar file %s: %w", args[0], err)
		}
		defer f.Close()
		src = f
	}
	defer func() {
		specErrs, ok := retErr.(verr.SpecErrors)
		if !ok {
			return
		}
		for _, err := range specErrs {
			err.SourceName = srcName
		}
	}()

	var class grammar.Class
	switch *compileFlags.class {
	case "lalr":
		class = grammar.ClassLALR
	case "lr1":
		class = grammar.ClassLR1
	default:
		return fmt.Errorf("invalid class: %v", *compileFlags.class)
	}

	rs, err := spec.Parse(src)
	if err != nil {
		return err
	}
	b := grammar.GrammarBuilder{
		RuleSet: rs,
	}
	gram, err := b.Build()
	if err != nil {
		return err
	}

	cgram, report, err := grammar.Compile(gram, grammar.WithClass(class), grammar.EnableReporting())
	if err != nil {
		return err
	}

	if *compileFlags.lexSpec != "" {
		lexical, err := compileLexSpec(*compileFlags.lexSpec, *compileFlags.skip, cgram.ParsingTable.Terminals)
		if err != nil {
			return err
		}
		cgram.Lexical = lexical
	}

	err = writeCompiledGrammarAndReport(cgram, report, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write the output files: %w", err)
	}

	var resolvedCount int
	for _, s := range report.States {
		resolvedCount += len(s.SRConflict) + len(s.RRConflict)
	}
	if resolvedCount > 0 {
		fmt.Fprintf(os.Stdout, "%v conflicts\n", resolvedCount)
	}

	return nil
}

// compileLexSpec compiles a maleeni lexical specification and maps its
// kinds onto the grammar's terminals. Kinds listed in skip are
// discarded by the token stream instead of being handed to the parser.
func compileLexSpec(path string, skipKinds []string, terminals []string) (*spec.LexicalSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the lexical specification file %s: %w", path, err)
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	lexSpec := &mlspec.LexSpec{}
	if err := json.Unmarshal(d, lexSpec); err != nil {
		return nil, err
	}

	compiled, err, cErrs := mlcompiler.Compile(lexSpec, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			for i, cErr := range cErrs {
				if i > 0 {
					fmt.Fprintf(&b, "\n")
				}
				fmt.Fprintf(&b, "%v: %v", cErr.Kind, cErr.Cause)
			}
			return nil, fmt.Errorf("%s", b.String())
		}
		return nil, err
	}

	term2Num := map[string]int{}
	for num, name := range terminals {
		if name == "" {
			continue
		}
		term2Num[name] = num
	}
	skip2 := map[string]struct{}{}
	for _, k := range skipKinds {
		skip2[k] = struct{}{}
	}

	kindToTerminal := make([]int, len(compiled.KindNames))
	skip := make([]int, len(compiled.KindNames))
	for id, k := range compiled.KindNames {
		if k == mlspec.LexKindNameNil {
			continue
		}
		if _, ok := skip2[k.String()]; ok {
			skip[id] = 1
			continue
		}
		num, ok := term2Num[k.String()]
		if !ok {
			return nil, fmt.Errorf("lexical kind '%v' does not match any terminal symbol", k)
		}
		kindToTerminal[id] = num
	}

	return &spec.LexicalSpec{
		Maleeni: &spec.Maleeni{
			Spec:           compiled,
			KindToTerminal: kindToTerminal,
			Skip:           skip,
		},
	}, nil
}

// writeCompiledGrammarAndReport writes the compiled grammar to path,
// or stdout when path is empty, and the report to a file named
// <grammar-name>-report.json next to it.
func writeCompiledGrammarAndReport(cgram *spec.CompiledGrammar, report *spec.Report, path string) error {
	reportFileName := cgram.Name + "-report.json"

	var cgramW io.Writer
	var reportPath string
	if path != "" {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		cgramW = f

		dir, _ := filepath.Split(path)
		reportPath = filepath.Join(dir, reportFileName)
	} else {
		cgramW = os.Stdout

		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		reportPath = filepath.Join(wd, reportFileName)
	}

	b, err := json.Marshal(cgram)
	if err != nil {
		return err
	}
	fmt.Fprintf(cgramW, "%v\n", string(b))

	reportFile, err := os.OpenFile(reportPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer reportFile.Close()

	rb, err := json.Marshal(report)
	if err != nil {
		return err
	}
	fmt.Fprintf(reportFile, "%v\n", string(rb))

	return nil
}
