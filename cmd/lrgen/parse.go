package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nihei9/lrgen/driver"
	"github.com/nihei9/lrgen/driver/lexer"
	"github.com/nihei9/lrgen/spec"
)

var parseFlags = struct {
	source *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "parse grammar.json [token kinds...]",
		Short: "Parse an input using a compiled grammar",
		Example: `  lrgen parse grammar.json id add id
  lrgen parse grammar.json --source source.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: runParse,
	}
	parseFlags.source = cmd.Flags().String("source", "", "source file path; the grammar must carry a lexical specification (- means stdin)")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return err
	}

	var toks driver.TokenStream
	if *parseFlags.source != "" {
		var src io.Reader = os.Stdin
		if *parseFlags.source != "-" {
			f, err := os.Open(*parseFlags.source)
			if err != nil {
				return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
			}
			defer f.Close()
			src = f
		}
		toks, err = lexer.NewTokenStream(cgram, src)
		if err != nil {
			return err
		}
	} else {
		seq := make([]*driver.Token, len(args)-1)
		for i, kind := range args[1:] {
			seq[i] = &driver.Token{
				Kind:   kind,
				Lexeme: kind,
			}
		}
		toks = driver.NewSliceTokenStream(seq)
	}

	p := driver.NewParser(driver.NewGrammar(cgram), toks)
	err = p.Parse()
	if err != nil {
		if synErr := p.SyntaxError(); synErr != nil {
			fmt.Fprintf(os.Stderr, "%v; expected: %v\n", synErr, strings.Join(synErr.ExpectedTerminals, ", "))
			os.Exit(1)
		}
		return err
	}

	driver.PrintTree(os.Stdout, p.Tree())

	return nil
}

func readCompiledGrammar(path string) (*spec.CompiledGrammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the compiled grammar %s: %w", path, err)
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	cgram := &spec.CompiledGrammar{}
	err = json.Unmarshal(d, cgram)
	if err != nil {
		return nil, err
	}

	return cgram, nil
}
