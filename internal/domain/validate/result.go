// Package validate checks location variable lists against the structural
// rules of their format: civic-address element names against the canonical
// taxonomy, GML parameters against per-shape definitions.
package validate

import "fmt"

// Result classifies the outcome of a variable list validation.
type Result int

const (
	ResultSuccess Result = iota
	ResultMissingType
	ResultInvalidType
	ResultInvalidVarname
	ResultNotEnoughVarnames
	ResultTooManyVarnames
	ResultInvalidValue
)

var resultTexts = map[Result]string{
	ResultSuccess:           "Success",
	ResultMissingType:       "Missing type",
	ResultInvalidType:       "Invalid type",
	ResultInvalidVarname:    "Invalid variable name",
	ResultNotEnoughVarnames: "Not enough variables",
	ResultTooManyVarnames:   "Too many variables",
	ResultInvalidValue:      "Invalid value",
}

// String returns the fixed diagnostic text for the result.
func (r Result) String() string {
	if text, ok := resultTexts[r]; ok {
		return text
	}

	return "Unknown result"
}

// Error carries a failed validation result together with the offending
// variable name or value so configuration errors are actionable.
type Error struct {
	Result Result
	Item   string
}

func (e *Error) Error() string {
	if e.Item == "" {
		return e.Result.String()
	}

	return fmt.Sprintf("%s: %q", e.Result, e.Item)
}

// resultError returns nil on success, otherwise an *Error for the result
// and offending item.
func resultError(r Result, item string) error {
	if r == ResultSuccess {
		return nil
	}

	return &Error{Result: r, Item: item}
}
