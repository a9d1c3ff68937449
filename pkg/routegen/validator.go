package routegen

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// Route Table Validation
// =============================================================================

// Validator checks scanned handlers for conflicts the generated table could
// not express.
type Validator struct {
	handlers []ScannedHandler
	errors   []BuildError
}

// NewValidator creates a validator for handlers.
func NewValidator(handlers []ScannedHandler) *Validator {
	return &Validator{handlers: handlers}
}

// Validate returns nil when the handlers form a valid table, or a
// *MultiBuildError listing every problem.
func (v *Validator) Validate() error {
	v.errors = nil

	v.validateDuplicateKeys()
	v.validateResultShape()

	if len(v.errors) > 0 {
		return &MultiBuildError{Errors: v.errors}
	}
	return nil
}

// validateDuplicateKeys reports key types claimed by more than one handler.
// Example: //nav:route Settings on both SettingsScreen and SettingsDialog
func (v *Validator) validateDuplicateKeys() {
	byKey := make(map[string][]ScannedHandler)
	var order []string
	for _, h := range v.handlers {
		if _, seen := byKey[h.KeyType]; !seen {
			order = append(order, h.KeyType)
		}
		byKey[h.KeyType] = append(byKey[h.KeyType], h)
	}

	for _, key := range order {
		hs := byKey[key]
		if len(hs) <= 1 {
			continue
		}
		names := make([]string, len(hs))
		locs := make([]string, len(hs))
		for i, h := range hs {
			names[i] = h.Name
			locs[i] = fmt.Sprintf("%s at %s:%d", h.Name, h.File, h.Line)
		}
		v.errors = append(v.errors, BuildError{
			Type:    ErrorDuplicateKey,
			Message: fmt.Sprintf("Duplicate route for %s", hs[0].KeyExpr),
			Handler: strings.Join(names, ", "),
			File:    hs[1].File,
			Line:    hs[1].Line,
			Column:  hs[1].Column,
			Details: "handlers " + strings.Join(locs, ", "),
		})
	}
}

// validateResultShape reports handlers whose result types differ; the
// table has a single view type.
func (v *Validator) validateResultShape() {
	byResult := make(map[string][]string)
	for _, h := range v.handlers {
		byResult[h.Result] = append(byResult[h.Result], h.Name)
	}
	if len(byResult) <= 1 {
		return
	}

	shapes := make([]string, 0, len(byResult))
	for result, names := range byResult {
		label := result
		if label == "" {
			label = "nothing"
		}
		shapes = append(shapes, fmt.Sprintf("%s returned by %s", label, strings.Join(names, ", ")))
	}
	sort.Strings(shapes)

	first := v.handlers[0]
	v.errors = append(v.errors, BuildError{
		Type:    ErrorResultMismatch,
		Message: "Handlers disagree on their result type",
		Handler: first.Name,
		File:    first.File,
		Line:    first.Line,
		Column:  first.Column,
		Details: strings.Join(shapes, "; "),
	})
}
