package routegen

import "github.com/vango-dev/navstack/pkg/registry"

// RegistryImportPath is the import path generated code and holder
// detection refer to.
const RegistryImportPath = "github.com/vango-dev/navstack/pkg/registry"

// Directive is the comment prefix that marks a handler.
const Directive = "//nav:route"

// ScannedHandler is one //nav:route function discovered by the scanner.
type ScannedHandler struct {
	// Name is the handler function name.
	Name string

	// File, Line and Column locate the function declaration.
	File   string
	Line   int
	Column int

	// KeyExpr is the key type as written in the directive (e.g. "*AskName").
	KeyExpr string

	// KeyType is the qualified key type (e.g. "*github.com/acme/app/screens.AskName").
	KeyType string

	Presentation registry.Presentation
	Invocation   registry.Invocation

	// ParamType is the parameter type text, empty for InvokeWithNothing.
	ParamType string

	// HolderConstructor builds the holder for InvokeWithHolder handlers,
	// e.g. "registry.NewHolder[Profile]" or "NewProfileModel".
	HolderConstructor string

	// Result is the result type text, empty when the handler returns nothing.
	Result string
}

// Package is the scan result for one package directory.
type Package struct {
	// Name is the Go package name.
	Name string

	// Dir is the scanned directory.
	Dir string

	// ImportPath is the package's import path.
	ImportPath string

	// Handlers are sorted by KeyType.
	Handlers []ScannedHandler

	// Imports maps the aliases generated code needs to their import paths.
	Imports map[string]string
}

// ResultType returns the view type shared by every handler, or "" when the
// handlers return nothing. Call it only on a validated package.
func (p *Package) ResultType() string {
	if len(p.Handlers) == 0 {
		return ""
	}
	return p.Handlers[0].Result
}
