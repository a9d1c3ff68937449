package routegen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/navstack/pkg/registry"
)

// DefaultOutput is the file name generated code is written to.
const DefaultOutput = "routes_gen.go"

// Scanner reads one package directory and collects its //nav:route handlers.
type Scanner struct {
	dir        string
	importPath string
	output     string
}

// NewScanner creates a scanner for dir.
func NewScanner(dir string) *Scanner {
	return &Scanner{dir: dir, output: DefaultOutput}
}

// WithImportPath sets the package import path instead of deriving it from
// the enclosing go.mod.
func (s *Scanner) WithImportPath(importPath string) *Scanner {
	s.importPath = importPath
	return s
}

// WithOutput sets the generated file name the scanner skips.
func (s *Scanner) WithOutput(name string) *Scanner {
	if name != "" {
		s.output = filepath.Base(name)
	}
	return s
}

// ScanOptions configures scanning behavior.
type ScanOptions struct {
	// Validate enables duplicate-key and result-shape checks.
	Validate bool
}

// Scan reads the package and validates its handlers.
func (s *Scanner) Scan() (*Package, error) {
	return s.ScanWithOptions(ScanOptions{Validate: true})
}

type typeInfo struct {
	isInterface bool
	// holderKey is K when the struct embeds registry.Holder[K].
	holderKey string
}

type funcSig struct {
	params  []string
	results []string
}

type parsedFile struct {
	path    string
	file    *ast.File
	imports map[string]string
	// registryAlias is the local name of the registry package, if imported.
	registryAlias string
}

type scanState struct {
	fset       *token.FileSet
	importPath string
	files      []*parsedFile
	types      map[string]typeInfo
	localTypes map[string]bool
	funcs      map[string]funcSig
	imports    map[string]string
	errors     []BuildError
}

// ScanWithOptions reads the package with configurable validation.
func (s *Scanner) ScanWithOptions(opts ScanOptions) (*Package, error) {
	st := &scanState{
		fset:       token.NewFileSet(),
		types:      make(map[string]typeInfo),
		localTypes: make(map[string]bool),
		funcs:      make(map[string]funcSig),
		imports:    make(map[string]string),
	}

	pkgName, err := s.parseFiles(st)
	if err != nil {
		return nil, err
	}

	st.importPath = s.importPath
	if st.importPath == "" {
		st.importPath, err = ResolveImportPath(s.dir)
		if err != nil {
			return nil, err
		}
	}

	st.index()

	pkg := &Package{
		Name:       pkgName,
		Dir:        s.dir,
		ImportPath: st.importPath,
	}
	for _, pf := range st.files {
		for _, decl := range pf.file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok {
				continue
			}
			if h, ok := st.scanFunc(pf, fn); ok {
				pkg.Handlers = append(pkg.Handlers, h)
			}
		}
	}

	sort.SliceStable(pkg.Handlers, func(i, j int) bool {
		a, b := pkg.Handlers[i], pkg.Handlers[j]
		if a.KeyType != b.KeyType {
			return a.KeyType < b.KeyType
		}
		return a.Name < b.Name
	})

	errs := st.errors
	if opts.Validate {
		if err := NewValidator(pkg.Handlers).Validate(); err != nil {
			errs = append(errs, err.(*MultiBuildError).Errors...)
		}
	}
	if len(errs) > 0 {
		return nil, &MultiBuildError{Errors: errs}
	}

	pkg.Imports = st.imports
	return pkg, nil
}

func (s *Scanner) parseFiles(st *scanState) (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", s.dir, err)
	}

	pkgName := ""
	for _, entry := range entries {
		name := entry.Name()
		// Skip directories, non-Go files, tests and our own output
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") || name == s.output {
			continue
		}

		p := filepath.Join(s.dir, name)
		f, err := parser.ParseFile(st.fset, p, nil, parser.ParseComments)
		if err != nil {
			return "", fmt.Errorf("scanning %s: %w", p, err)
		}
		if ast.IsGenerated(f) {
			continue
		}
		if pkgName == "" {
			pkgName = f.Name.Name
		} else if f.Name.Name != pkgName {
			return "", fmt.Errorf("scanning %s: found packages %s and %s", s.dir, pkgName, f.Name.Name)
		}
		st.files = append(st.files, &parsedFile{path: p, file: f})
	}

	if pkgName == "" {
		return "", fmt.Errorf("scanning %s: no Go files", s.dir)
	}
	return pkgName, nil
}

// index records package-level types, functions and per-file imports.
func (st *scanState) index() {
	for _, pf := range st.files {
		pf.imports = fileImports(pf.file)
		for alias, p := range pf.imports {
			if p == RegistryImportPath {
				pf.registryAlias = alias
			}
		}

		for _, decl := range pf.file.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}
				for _, spec := range d.Specs {
					ts := spec.(*ast.TypeSpec)
					st.types[ts.Name.Name] = describeType(pf, ts)
				}
			case *ast.FuncDecl:
				if d.Recv == nil {
					st.funcs[d.Name.Name] = funcSig{
						params:  fieldTypes(d.Type.Params),
						results: fieldTypes(d.Type.Results),
					}
				}
				if d.Body != nil {
					ast.Inspect(d.Body, func(n ast.Node) bool {
						if ts, ok := n.(*ast.TypeSpec); ok {
							st.localTypes[ts.Name.Name] = true
						}
						return true
					})
				}
			}
		}
	}
}

func describeType(pf *parsedFile, ts *ast.TypeSpec) typeInfo {
	switch t := ts.Type.(type) {
	case *ast.InterfaceType:
		return typeInfo{isInterface: true}
	case *ast.StructType:
		for _, field := range t.Fields.List {
			if len(field.Names) != 0 {
				continue
			}
			if k, ok := holderTypeArg(pf, field.Type); ok {
				return typeInfo{holderKey: k}
			}
		}
	}
	return typeInfo{}
}

// holderTypeArg reports K when expr is registry.Holder[K].
func holderTypeArg(pf *parsedFile, expr ast.Expr) (string, bool) {
	idx, ok := expr.(*ast.IndexExpr)
	if !ok || pf.registryAlias == "" {
		return "", false
	}
	sel, ok := idx.X.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Holder" {
		return "", false
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok || pkg.Name != pf.registryAlias {
		return "", false
	}
	return types.ExprString(idx.Index), true
}

func (st *scanState) scanFunc(pf *parsedFile, fn *ast.FuncDecl) (ScannedHandler, bool) {
	fields, found := directiveFields(fn.Doc)
	if !found {
		return ScannedHandler{}, false
	}

	pos := st.fset.Position(fn.Pos())
	h := ScannedHandler{
		Name:   fn.Name.Name,
		File:   pos.Filename,
		Line:   pos.Line,
		Column: pos.Column,
	}
	fail := func(typ BuildErrorType, msg, details string) (ScannedHandler, bool) {
		st.errors = append(st.errors, BuildError{
			Type:    typ,
			Message: msg,
			Handler: h.Name,
			File:    h.File,
			Line:    h.Line,
			Column:  h.Column,
			Details: details,
		})
		return ScannedHandler{}, false
	}

	if fn.Recv != nil {
		return fail(ErrorNotPlainFunc, fmt.Sprintf("%s is a method", h.Name), "routes must be top-level functions")
	}
	if fn.Type.TypeParams != nil && len(fn.Type.TypeParams.List) > 0 {
		return fail(ErrorNotPlainFunc, fmt.Sprintf("%s has type parameters", h.Name), "")
	}

	if len(fields) == 0 || len(fields) > 2 {
		return fail(ErrorInvalidDirective, fmt.Sprintf("Malformed directive on %s", h.Name), "expected "+Directive+" <KeyType> [plain|modal|bottom-sheet]")
	}
	keyExpr, err := parser.ParseExpr(fields[0])
	if err != nil || !isTypeName(keyExpr) {
		return fail(ErrorInvalidDirective, fmt.Sprintf("Key type %q on %s is not a type name", fields[0], h.Name), "use T, *T, pkg.T or *pkg.T")
	}
	h.KeyExpr = types.ExprString(keyExpr)

	kind := ""
	if len(fields) == 2 {
		kind = fields[1]
	}
	h.Presentation, err = registry.ParsePresentation(kind)
	if err != nil {
		return fail(ErrorInvalidPresentation, fmt.Sprintf("Unknown presentation %q on %s", kind, h.Name), "use plain, modal or bottom-sheet")
	}

	qualified, typ, msg := st.qualify(pf, keyExpr)
	if typ != "" {
		return fail(typ, msg, h.KeyExpr)
	}
	h.KeyType = qualified

	params := fieldTypes(fn.Type.Params)
	switch {
	case len(params) == 0:
		h.Invocation = registry.InvokeWithNothing
	case len(params) == 1 && params[0] == h.KeyExpr:
		h.Invocation = registry.InvokeWithKey
		h.ParamType = params[0]
	case len(params) == 1:
		ctor, details := st.holderConstructor(pf, fn.Type.Params.List[0].Type, h.KeyExpr)
		if ctor == "" {
			return fail(ErrorBadSignature, fmt.Sprintf("%s takes %s, which is neither %s nor a holder of it", h.Name, params[0], h.KeyExpr), details)
		}
		h.Invocation = registry.InvokeWithHolder
		h.ParamType = params[0]
		h.HolderConstructor = ctor
	default:
		return fail(ErrorBadSignature, fmt.Sprintf("%s takes %d parameters", h.Name, len(params)), "handlers take nothing, the key, or its holder")
	}

	results := fieldTypes(fn.Type.Results)
	if len(results) > 1 {
		return fail(ErrorBadSignature, fmt.Sprintf("%s returns %d values", h.Name, len(results)), "handlers return at most one value")
	}
	if len(results) == 1 {
		h.Result = results[0]
	}

	exprs := []ast.Expr{keyExpr}
	if fn.Type.Params != nil {
		for _, f := range fn.Type.Params.List {
			exprs = append(exprs, f.Type)
		}
	}
	if fn.Type.Results != nil {
		for _, f := range fn.Type.Results.List {
			exprs = append(exprs, f.Type)
		}
	}
	if !st.useImports(pf, h, exprs...) {
		return ScannedHandler{}, false
	}
	return h, true
}

// qualify resolves a key type expression to its qualified name. On failure
// it returns the error category and message.
func (st *scanState) qualify(pf *parsedFile, expr ast.Expr) (string, BuildErrorType, string) {
	prefix := ""
	if star, ok := expr.(*ast.StarExpr); ok {
		prefix = "*"
		expr = star.X
	}

	switch e := expr.(type) {
	case *ast.Ident:
		info, ok := st.types[e.Name]
		if !ok {
			if st.localTypes[e.Name] {
				return "", ErrorLocalKeyType, fmt.Sprintf("Key type %s is declared inside a function", e.Name)
			}
			return "", ErrorUnresolvedKeyType, fmt.Sprintf("Key type %s is not declared in package", e.Name)
		}
		if info.isInterface {
			return "", ErrorInterfaceKeyType, fmt.Sprintf("Key type %s is an interface, not a concrete key type", e.Name)
		}
		return prefix + st.importPath + "." + e.Name, "", ""
	case *ast.SelectorExpr:
		pkg := e.X.(*ast.Ident)
		p, ok := pf.imports[pkg.Name]
		if !ok {
			return "", ErrorUnresolvedKeyType, fmt.Sprintf("Package %s of key type %s.%s is not imported", pkg.Name, pkg.Name, e.Sel.Name)
		}
		return prefix + p + "." + e.Sel.Name, "", ""
	}
	return "", ErrorInvalidDirective, "Unsupported key type expression"
}

// holderConstructor returns the expression that builds a holder for param,
// or "" and a hint when param is not a holder of key.
func (st *scanState) holderConstructor(pf *parsedFile, param ast.Expr, key string) (string, string) {
	// *registry.Holder[K]
	if star, ok := param.(*ast.StarExpr); ok {
		if k, ok := holderTypeArg(pf, star.X); ok {
			if k != key {
				return "", fmt.Sprintf("holder is for %s, not %s", k, key)
			}
			return pf.registryAlias + ".NewHolder[" + key + "]", ""
		}
	}

	base := param
	if star, ok := param.(*ast.StarExpr); ok {
		base = star.X
	}
	ident, ok := base.(*ast.Ident)
	if !ok {
		return "", "parameter must be the key type or a holder built on registry.Holder"
	}
	info, ok := st.types[ident.Name]
	if !ok || info.holderKey == "" {
		return "", fmt.Sprintf("%s does not embed registry.Holder[%s]", ident.Name, key)
	}
	if info.holderKey != key {
		return "", fmt.Sprintf("%s embeds a holder for %s, not %s", ident.Name, info.holderKey, key)
	}

	paramText := types.ExprString(param)
	ctor := "New" + ident.Name
	sig, ok := st.funcs[ctor]
	if !ok || len(sig.params) != 1 || sig.params[0] != key || len(sig.results) != 1 || sig.results[0] != paramText {
		return "", fmt.Sprintf("add func %s(%s) %s", ctor, key, paramText)
	}
	return ctor, ""
}

// useImports records the imports generated code needs for exprs.
func (st *scanState) useImports(pf *parsedFile, h ScannedHandler, exprs ...ast.Expr) bool {
	ok := true
	need := func(alias string) {
		p, imported := pf.imports[alias]
		if !imported {
			return
		}
		if existing, seen := st.imports[alias]; seen && existing != p {
			st.errors = append(st.errors, BuildError{
				Type:    ErrorImportConflict,
				Message: fmt.Sprintf("Import name %s refers to both %s and %s", alias, existing, p),
				Handler: h.Name,
				File:    h.File,
				Line:    h.Line,
				Column:  h.Column,
				Details: "use the same import name for the same package in every file",
			})
			ok = false
			return
		}
		st.imports[alias] = p
	}

	for _, expr := range exprs {
		ast.Inspect(expr, func(n ast.Node) bool {
			if sel, isSel := n.(*ast.SelectorExpr); isSel {
				if id, isIdent := sel.X.(*ast.Ident); isIdent {
					need(id.Name)
				}
			}
			return true
		})
	}
	if h.Invocation == registry.InvokeWithHolder && strings.HasPrefix(h.HolderConstructor, pf.registryAlias+".") {
		need(pf.registryAlias)
	}
	return ok
}

// directiveFields returns the words after the directive in doc.
func directiveFields(doc *ast.CommentGroup) ([]string, bool) {
	if doc == nil {
		return nil, false
	}
	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, Directive) {
			continue
		}
		rest := strings.TrimPrefix(c.Text, Directive)
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue
		}
		return strings.Fields(rest), true
	}
	return nil, false
}

func isTypeName(expr ast.Expr) bool {
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch e := expr.(type) {
	case *ast.Ident:
		return true
	case *ast.SelectorExpr:
		_, ok := e.X.(*ast.Ident)
		return ok
	}
	return false
}

// fieldTypes expands a field list to one type string per name.
func fieldTypes(fl *ast.FieldList) []string {
	if fl == nil {
		return nil
	}
	var out []string
	for _, f := range fl.List {
		text := types.ExprString(f.Type)
		n := len(f.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			out = append(out, text)
		}
	}
	return out
}

func fileImports(f *ast.File) map[string]string {
	imports := make(map[string]string)
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		alias := defaultImportName(p)
		if spec.Name != nil {
			alias = spec.Name.Name
		}
		if alias == "_" || alias == "." {
			continue
		}
		imports[alias] = p
	}
	return imports
}

// defaultImportName guesses a package name from its path: the last element
// without a major-version suffix.
func defaultImportName(importPath string) string {
	name := path.Base(importPath)
	if len(name) > 1 && name[0] == 'v' && isDigits(name[1:]) {
		name = path.Base(path.Dir(importPath))
	}
	if i := strings.Index(name, ".v"); i > 0 && isDigits(name[i+2:]) {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	return strings.ReplaceAll(name, "-", "_")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
