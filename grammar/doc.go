// Package grammar turns a validated rule set into an LR(1) or LALR(1)
// parsing table.
//
// The pipeline is: augment the grammar, compute FIRST, build the
// canonical LR(1) collection, optionally merge it into an LALR(1)
// automaton, and fill the ACTION and GOTO tables. Conflicts are never
// fatal; a resolution policy picks the surviving action and every
// conflict is recorded for the report.
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrgen.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.grammar")
}
