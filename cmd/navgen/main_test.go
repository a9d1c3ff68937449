package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/navstack/pkg/routegen"
)

const screensSource = `package screens

import "github.com/vango-dev/navstack/pkg/nav"

type Home struct{ nav.Destination }

type Profile struct {
	nav.Destination
	ID int
}

//nav:route Home
func HomeScreen() string { return "home" }

//nav:route Profile modal
func ProfileScreen(p Profile) string { return "profile" }
`

// setupProject writes a module with a screens package and changes into it.
func setupProject(t *testing.T, sources ...string) string {
	t.Helper()
	root := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("go.mod", "module example.com/app\n\ngo 1.24\n")
	write("navgen.yaml", "dir: screens\n")
	for i, src := range sources {
		write(filepath.Join("screens", "screens"+strings.Repeat("_x", i)+".go"), src)
	}
	t.Chdir(root)
	return root
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestGen(t *testing.T) {
	root := setupProject(t, screensSource)

	out, errOut, err := run(t, "gen")
	if err != nil {
		t.Fatalf("gen error: %v\n%s", err, errOut)
	}
	if !strings.Contains(out, "Found 2 routes") {
		t.Errorf("output missing route count:\n%s", out)
	}

	code, err := os.ReadFile(filepath.Join(root, "screens", routegen.DefaultOutput))
	if err != nil {
		t.Fatalf("generated file: %v", err)
	}
	if !strings.HasPrefix(string(code), routegen.Header) {
		t.Error("generated file missing header")
	}
	if !strings.Contains(string(code), "func Routes() *registry.Registry[string]") {
		t.Errorf("generated file missing Routes:\n%s", code)
	}

	out, _, err = run(t, "gen")
	if err != nil {
		t.Fatalf("second gen error: %v", err)
	}
	if !strings.Contains(out, "up to date") {
		t.Errorf("second gen should leave the file alone:\n%s", out)
	}
}

func TestGenFlags(t *testing.T) {
	root := setupProject(t, screensSource)

	if _, errOut, err := run(t, "gen", "--output", "table_gen.go", "--func", "Table"); err != nil {
		t.Fatalf("gen error: %v\n%s", err, errOut)
	}
	code, err := os.ReadFile(filepath.Join(root, "screens", "table_gen.go"))
	if err != nil {
		t.Fatalf("generated file: %v", err)
	}
	if !strings.Contains(string(code), "func Table()") {
		t.Errorf("generated file missing Table:\n%s", code)
	}
}

func TestGenPositionalDir(t *testing.T) {
	root := setupProject(t, screensSource)
	t.Chdir(filepath.Join(root, "screens"))

	if _, errOut, err := run(t, "gen", "."); err != nil {
		t.Fatalf("gen error: %v\n%s", err, errOut)
	}
	if _, err := os.Stat(filepath.Join(root, "screens", routegen.DefaultOutput)); err != nil {
		t.Errorf("generated file: %v", err)
	}
}

func TestGenBuildErrors(t *testing.T) {
	setupProject(t, screensSource, `package screens

//nav:route Profile
func OtherProfile(p Profile) string { return "" }
`)

	_, errOut, err := run(t, "gen")
	if err == nil {
		t.Fatal("gen should fail on a duplicate route")
	}
	if !strings.Contains(errOut, "E108") {
		t.Errorf("stderr missing E108:\n%s", errOut)
	}
}

func TestGenMissingDir(t *testing.T) {
	setupProject(t)

	_, errOut, err := run(t, "gen", "--dir", "nowhere")
	if err == nil {
		t.Fatal("gen should fail for a missing directory")
	}
	if !strings.Contains(errOut, "E140") {
		t.Errorf("stderr missing E140:\n%s", errOut)
	}
}

func TestCheck(t *testing.T) {
	setupProject(t, screensSource)

	_, errOut, err := run(t, "check")
	if err == nil {
		t.Fatal("check should fail before gen")
	}
	if !strings.Contains(errOut, "E141") {
		t.Errorf("stderr missing E141:\n%s", errOut)
	}

	if _, _, err := run(t, "gen"); err != nil {
		t.Fatalf("gen error: %v", err)
	}
	if _, errOut, err := run(t, "check"); err != nil {
		t.Fatalf("check after gen: %v\n%s", err, errOut)
	}
}

func TestList(t *testing.T) {
	setupProject(t, screensSource)

	tests := []struct {
		format string
		decode func(string) ([]route, error)
	}{
		{"json", func(s string) ([]route, error) {
			var r []route
			return r, json.Unmarshal([]byte(s), &r)
		}},
		{"yaml", func(s string) ([]route, error) {
			var r []route
			return r, yaml.Unmarshal([]byte(s), &r)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, errOut, err := run(t, "list", "--format", tt.format)
			if err != nil {
				t.Fatalf("list error: %v\n%s", err, errOut)
			}
			routes, err := tt.decode(out)
			if err != nil {
				t.Fatalf("decode: %v\n%s", err, out)
			}
			if len(routes) != 2 {
				t.Fatalf("len = %d, want 2", len(routes))
			}
			if routes[0].Key != "example.com/app/screens.Home" || routes[0].Handler != "HomeScreen" {
				t.Errorf("routes[0] = %+v", routes[0])
			}
			if routes[1].Presentation != "modal" {
				t.Errorf("routes[1].Presentation = %q", routes[1].Presentation)
			}
		})
	}

	t.Run("table", func(t *testing.T) {
		out, _, err := run(t, "list")
		if err != nil {
			t.Fatalf("list error: %v", err)
		}
		if !strings.HasPrefix(out, "KEY") || !strings.Contains(out, "ProfileScreen") {
			t.Errorf("table output:\n%s", out)
		}
	})
}

func TestListUnknownFormat(t *testing.T) {
	setupProject(t, screensSource)

	_, errOut, err := run(t, "list", "--format", "xml")
	if err == nil {
		t.Fatal("list should reject xml")
	}
	if !strings.Contains(errOut, "E143") {
		t.Errorf("stderr missing E143:\n%s", errOut)
	}
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q", out)
	}

	out, _, _ = run(t, "version")
	if !strings.Contains(out, "Go version:") {
		t.Errorf("version output:\n%s", out)
	}
}

func TestInit(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/app\n\ngo 1.24\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(root)

	out, errOut, err := run(t, "init", "--dir", "ui/views", "--template", "results")
	if err != nil {
		t.Fatalf("init error: %v\n%s", err, errOut)
	}
	if !strings.Contains(out, "created navgen.yaml") || !strings.Contains(out, "Found 3 routes") {
		t.Errorf("init output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(root, "ui", "views", routegen.DefaultOutput)); err != nil {
		t.Errorf("generated file: %v", err)
	}

	// The written config is picked up by later commands.
	if _, errOut, err := run(t, "check"); err != nil {
		t.Errorf("check after init: %v\n%s", err, errOut)
	}

	_, errOut, err = run(t, "init", "--dir", "ui/views")
	if err == nil || !strings.Contains(errOut, "E145") {
		t.Errorf("second init error = %v\n%s", err, errOut)
	}
}
