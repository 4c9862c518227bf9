package spec

import (
	"bufio"
	"errors"
	"io"
	"strings"

	verr "github.com/nihei9/lrgen/error"
)

var (
	ParseErrInvalidDirective = errors.New("invalid directive")
	ParseErrInvalidRule      = errors.New("invalid rule")
	ParseErrOrphanedAlt      = errors.New("an alternative needs a preceding rule")
)

// Parse reads a grammar written in a line-oriented notation:
//
//	# comment
//	%name arith
//	%start expr
//
//	expr -> expr add term | term
//	term -> term mul factor
//	     | factor
//
// Each rule is `lhs -> alternative | alternative | ...`; a line starting
// with `|` continues the previous rule, and an empty alternative derives
// the empty string. A symbol written as `<name>` is an explicit
// non-terminal reference; bare names have their kind inferred from
// usage.
func Parse(src io.Reader) (*RuleSet, error) {
	rs := &RuleSet{}
	var errs verr.SpecErrors

	scanner := bufio.NewScanner(src)
	row := 0
	for scanner.Scan() {
		row++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "%"):
			name, param, ok := splitDirective(line)
			if !ok {
				errs = append(errs, &verr.SpecError{
					Cause:  ParseErrInvalidDirective,
					Detail: line,
					Row:    row,
				})
				continue
			}
			switch name {
			case "name":
				rs.Name = param
			case "start":
				rs.Start = stripNonTermMark(param)
			default:
				errs = append(errs, &verr.SpecError{
					Cause:  ParseErrInvalidDirective,
					Detail: name,
					Row:    row,
				})
			}
		case strings.HasPrefix(line, "|"):
			if len(rs.Rules) == 0 {
				errs = append(errs, &verr.SpecError{
					Cause: ParseErrOrphanedAlt,
					Row:   row,
				})
				continue
			}
			last := rs.Rules[len(rs.Rules)-1]
			for _, alt := range splitAlternatives(strings.TrimPrefix(line, "|")) {
				rs.Rules = append(rs.Rules, &Rule{
					LHS: last.LHS,
					RHS: alt,
					Row: row,
				})
			}
		default:
			lhs, rhs, ok := strings.Cut(line, "->")
			if !ok {
				errs = append(errs, &verr.SpecError{
					Cause:  ParseErrInvalidRule,
					Detail: line,
					Row:    row,
				})
				continue
			}
			lhsName := stripNonTermMark(strings.TrimSpace(lhs))
			if lhsName == "" {
				errs = append(errs, &verr.SpecError{
					Cause:  ParseErrInvalidRule,
					Detail: line,
					Row:    row,
				})
				continue
			}
			for _, alt := range splitAlternatives(rhs) {
				rs.Rules = append(rs.Rules, &Rule{
					LHS: lhsName,
					RHS: alt,
					Row: row,
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return rs, nil
}

func splitDirective(line string) (string, string, bool) {
	fields := strings.Fields(strings.TrimPrefix(line, "%"))
	switch len(fields) {
	case 1:
		return fields[0], "", true
	case 2:
		return fields[0], fields[1], true
	}
	return "", "", false
}

// splitAlternatives splits the RHS of a rule on `|`. An empty
// alternative yields an empty symbol sequence, which represents an
// ε-production.
func splitAlternatives(rhs string) [][]*RuleSymbol {
	var alts [][]*RuleSymbol
	for _, alt := range strings.Split(rhs, "|") {
		var syms []*RuleSymbol
		for _, field := range strings.Fields(alt) {
			syms = append(syms, parseRuleSymbol(field))
		}
		alts = append(alts, syms)
	}
	return alts
}

func parseRuleSymbol(field string) *RuleSymbol {
	if name := stripNonTermMark(field); name != field {
		return &RuleSymbol{
			Name: name,
			Kind: SymbolKindNonTerminal,
		}
	}
	return &RuleSymbol{
		Name: field,
	}
}

func stripNonTermMark(name string) string {
	if strings.HasPrefix(name, "<") && strings.HasSuffix(name, ">") && len(name) > 2 {
		return name[1 : len(name)-1]
	}
	return name
}
