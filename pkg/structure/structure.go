// Package structure materializes OPTIMADE result records into domain
// objects with a display label.
package structure

import (
	"fmt"
	"strings"

	"github.com/matgraph/optimade-client/pkg/response"
)

// formulaFields is the fallback chain for the display formula. The
// first field with a non-empty string value wins.
var formulaFields = []string{
	"chemical_formula_descriptive",
	"chemical_formula_reduced",
	"chemical_formula_anonymous",
	"chemical_formula_hill",
}

// BadResourceError reports a record that is missing every field needed
// for display. This is a client-side protocol violation, distinct from
// any error the remote service reports.
type BadResourceError struct {
	ID     string
	Fields []string
}

func (e *BadResourceError) Error() string {
	return fmt.Sprintf("record %q has none of the required fields: %s",
		e.ID, strings.Join(e.Fields, ", "))
}

// Structure is a materialized result record. The record is owned by
// the caller; changes to the structure do not affect the outcome it
// came from.
type Structure struct {
	ID         string
	Attributes map[string]any
	formula    string
}

// New materializes a record into a Structure. Returns a
// *BadResourceError when none of the chemical formula fields carries a
// usable value.
func New(rec response.Record) (*Structure, error) {
	formula := ""
	for _, field := range formulaFields {
		if v, ok := rec.Attributes[field].(string); ok && v != "" {
			formula = v
			break
		}
	}
	if formula == "" {
		return nil, &BadResourceError{
			ID:     rec.ID,
			Fields: append([]string(nil), formulaFields...),
		}
	}

	return &Structure{
		ID:         rec.ID,
		Attributes: rec.Attributes,
		formula:    formula,
	}, nil
}

// Formula returns the display formula resolved at materialization.
func (s *Structure) Formula() string {
	return s.formula
}

// Label returns the display key for the structure, e.g. "SiO2 (id=1)".
func (s *Structure) Label() string {
	return fmt.Sprintf("%s (id=%s)", s.formula, s.ID)
}
