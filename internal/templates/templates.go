package templates

import (
	"bytes"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/vango-dev/navstack/internal/errors"
	"github.com/vango-dev/navstack/pkg/routegen"
)

// Config holds the values substituted into a template.
type Config struct {
	// Dir is the route package directory, relative to the project root.
	Dir string

	// Package is the Go package name. Defaults to the last element of Dir.
	Package string

	// Output and Func are written to navgen.yaml.
	Output string
	Func   string
}

// Template is a named set of files.
type Template struct {
	Name        string
	Description string

	// Files maps relative paths to contents. Both are text/template
	// sources executed with Config.
	Files map[string]string
}

var templates = map[string]*Template{
	"minimal": minimalTemplate(),
	"results": resultsTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("E144").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: " + strings.Join(List(), ", "))
	}
	return tmpl, nil
}

// List returns all template names in order.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Normalize fills defaults and checks the package name.
func (c *Config) Normalize() error {
	if c.Dir == "" {
		c.Dir = "screens"
	}
	c.Dir = filepath.ToSlash(filepath.Clean(c.Dir))
	if c.Package == "" {
		c.Package = strings.ReplaceAll(filepath.Base(c.Dir), "-", "")
	}
	if c.Output == "" {
		c.Output = routegen.DefaultOutput
	}
	if c.Func == "" {
		c.Func = routegen.DefaultFunc
	}
	if !token.IsIdentifier(c.Package) || c.Package == "_" || c.Package == "main" {
		return errors.New("E146").WithDetail("'" + c.Package + "' cannot be used as a route package name")
	}
	return nil
}

// Create writes the template into dir and returns the written paths, sorted.
// Existing files are never overwritten: if any target exists nothing is
// written.
func (t *Template) Create(dir string, cfg Config) ([]string, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	rendered := make(map[string][]byte, len(t.Files))
	for relPath, content := range t.Files {
		path, err := execute(relPath+".path", relPath, cfg)
		if err != nil {
			return nil, err
		}
		body, err := execute(relPath, content, cfg)
		if err != nil {
			return nil, err
		}
		full := filepath.Join(dir, filepath.FromSlash(string(path)))
		if _, err := os.Stat(full); err == nil {
			return nil, errors.New("E145").WithDetail(full + " already exists")
		}
		rendered[full] = body
	}

	paths := make([]string, 0, len(rendered))
	for p := range rendered {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(p, rendered[p], 0644); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func execute(name, text string, cfg Config) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, errors.Newf(errors.CategoryCLI, "invalid template %s: %v", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		return nil, errors.Newf(errors.CategoryCLI, "template execute error %s: %v", name, err)
	}
	return buf.Bytes(), nil
}

const configFile = `dir: {{.Dir}}
output: {{.Output}}
func: {{.Func}}
`

func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "Two plain screens",
		Files: map[string]string{
			"navgen.yaml": configFile,
			"{{.Dir}}/keys.go": `package {{.Package}}

import "github.com/vango-dev/navstack/pkg/nav"

// Home is the first destination.
type Home struct{ nav.Destination }

// Detail shows one item.
type Detail struct {
	nav.Destination
	ID int ` + "`json:\"id\"`" + `
}
`,
			"{{.Dir}}/screens.go": `package {{.Package}}

import "fmt"

//nav:route Home
func HomeScreen() string { return "home" }

//nav:route Detail
func DetailScreen(d Detail) string { return fmt.Sprintf("detail %d", d.ID) }
`,
		},
	}
}

func resultsTemplate() *Template {
	t := minimalTemplate()
	t.Name = "results"
	t.Description = "Plain screens plus a modal that returns a value"
	t.Files["{{.Dir}}/confirm.go"] = `package {{.Package}}

import (
	"github.com/vango-dev/navstack/pkg/nav"
	"github.com/vango-dev/navstack/pkg/registry"
)

// Confirm asks a yes/no question and hands the answer back.
type Confirm struct {
	nav.Result[bool]
	Question string ` + "`json:\"question\"`" + `
}

// ConfirmModel keeps the dialog state while Confirm is on the stack.
type ConfirmModel struct {
	registry.Holder[*Confirm]
	Yes bool
}

func NewConfirmModel(k *Confirm) *ConfirmModel {
	return &ConfirmModel{Holder: registry.MakeHolder(k)}
}

//nav:route *Confirm modal
func ConfirmDialog(m *ConfirmModel) string { return m.Key().Question }
`
	return t
}
