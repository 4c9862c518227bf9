package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrNoProduction        = newSemanticError("a grammar needs at least one production")
	semErrNoStartProduction   = newSemanticError("the start symbol has no productions")
	semErrUndefinedSym        = newSemanticError("undefined symbol")
	semErrDuplicateProduction = newSemanticError("duplicate production")
	semErrDuplicateName       = newSemanticError("duplicate names are not allowed between terminals and non-terminals")
)
