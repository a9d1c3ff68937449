// Package templates scaffolds route packages for navgen init.
//
// # Available Templates
//
//   - minimal: two plain screens
//   - results: adds a modal result key with a state holder
//
// # Usage
//
//	tmpl, err := templates.Get("minimal")
//	if err != nil {
//	    return err
//	}
//	files, err := tmpl.Create(projectRoot, templates.Config{Dir: "screens"})
//
// # Template Variables
//
// File paths and contents are text/template sources:
//
//	{{.Dir}}      - route package directory
//	{{.Package}}  - Go package name
//	{{.Output}}   - generated file name
//	{{.Func}}     - generated constructor name
package templates
