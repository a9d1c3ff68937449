package routegen

import (
	"fmt"
	"go/format"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/navstack/pkg/registry"
)

// Header starts every generated file.
const Header = "// Code generated by navgen. DO NOT EDIT."

// DefaultFunc is the name of the generated constructor.
const DefaultFunc = "Routes"

// Generator renders a scanned package into Go source.
type Generator struct {
	pkg      *Package
	funcName string
}

// NewGenerator creates a generator for pkg. An empty funcName uses DefaultFunc.
func NewGenerator(pkg *Package, funcName string) *Generator {
	if funcName == "" {
		funcName = DefaultFunc
	}
	return &Generator{pkg: pkg, funcName: funcName}
}

// Generate returns the gofmt'ed source of the route table.
func (g *Generator) Generate() ([]byte, error) {
	if existing, ok := g.pkg.Imports["registry"]; ok && existing != RegistryImportPath {
		return nil, &MultiBuildError{Errors: []BuildError{{
			Type:    ErrorImportConflict,
			Message: fmt.Sprintf("Import name registry refers to %s", existing),
			Details: "generated code imports " + RegistryImportPath + " as registry",
		}}}
	}

	view := g.pkg.ResultType()
	void := view == ""
	if void {
		view = "registry.Void"
	}

	var sb strings.Builder
	sb.WriteString(Header + "\n\n")
	sb.WriteString("package " + g.pkg.Name + "\n\n")
	g.writeImports(&sb)

	fmt.Fprintf(&sb, "// %s returns the route table of package %s.\n", g.funcName, g.pkg.Name)
	fmt.Fprintf(&sb, "func %s() *registry.Registry[%s] {\n", g.funcName, view)
	fmt.Fprintf(&sb, "\treturn registry.MustNew[%s](\n", view)
	for _, h := range g.pkg.Handlers {
		sb.WriteString("\t\t" + g.route(h, void) + ",\n")
	}
	sb.WriteString("\t)\n}\n")

	out, err := format.Source([]byte(sb.String()))
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}
	return out, nil
}

func (g *Generator) writeImports(sb *strings.Builder) {
	aliases := make([]string, 0, len(g.pkg.Imports)+1)
	imports := map[string]string{"registry": RegistryImportPath}
	for alias, p := range g.pkg.Imports {
		imports[alias] = p
	}
	for alias := range imports {
		aliases = append(aliases, alias)
	}
	sort.Slice(aliases, func(i, j int) bool { return imports[aliases[i]] < imports[aliases[j]] })

	sb.WriteString("import (\n")
	for _, alias := range aliases {
		p := imports[alias]
		if defaultImportName(p) == alias {
			fmt.Fprintf(sb, "\t%s\n", strconv.Quote(p))
		} else {
			fmt.Fprintf(sb, "\t%s %s\n", alias, strconv.Quote(p))
		}
	}
	sb.WriteString(")\n\n")
}

func (g *Generator) route(h ScannedHandler, void bool) string {
	name := strconv.Quote(h.Name)
	presentation := "registry." + h.Presentation.GoName()

	switch h.Invocation {
	case registry.InvokeWithNothing:
		fn := h.Name
		if void {
			fn = fmt.Sprintf("func() registry.Void { %s(); return registry.Void{} }", h.Name)
		}
		return fmt.Sprintf("registry.PassNothing[%s](%s, %s, %s)", h.KeyExpr, name, presentation, fn)
	case registry.InvokeWithHolder:
		fn := h.Name
		if void {
			fn = fmt.Sprintf("func(h %s) registry.Void { %s(h); return registry.Void{} }", h.ParamType, h.Name)
		}
		return fmt.Sprintf("registry.PassHolder[%s](%s, %s, %s, %s)", h.KeyExpr, name, presentation, h.HolderConstructor, fn)
	default:
		fn := h.Name
		if void {
			fn = fmt.Sprintf("func(k %s) registry.Void { %s(k); return registry.Void{} }", h.KeyExpr, h.Name)
		}
		return fmt.Sprintf("registry.PassKey[%s](%s, %s, %s)", h.KeyExpr, name, presentation, fn)
	}
}
