package templates

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/navstack/internal/errors"
	"github.com/vango-dev/navstack/pkg/registry"
	"github.com/vango-dev/navstack/pkg/routegen"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"minimal", false},
		{"results", false},
		{"nonexistent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Get(tt.name)
			if tt.wantErr {
				var ne *errors.NavError
				if !stderrors.As(err, &ne) || ne.Code != "E144" {
					t.Errorf("Get(%q) error = %v, want E144", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tmpl.Name != tt.name {
				t.Errorf("Name = %q, want %q", tmpl.Name, tt.name)
			}
		})
	}
}

func TestList(t *testing.T) {
	if got := strings.Join(List(), ","); got != "minimal,results" {
		t.Errorf("List() = %s", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantPkg string
		wantErr bool
	}{
		{name: "defaults", cfg: Config{}, wantPkg: "screens"},
		{name: "nested dir", cfg: Config{Dir: "internal/ui/views"}, wantPkg: "views"},
		{name: "dash removed", cfg: Config{Dir: "my-screens"}, wantPkg: "myscreens"},
		{name: "explicit package", cfg: Config{Dir: "ui", Package: "routes"}, wantPkg: "routes"},
		{name: "main rejected", cfg: Config{Package: "main"}, wantErr: true},
		{name: "not an identifier", cfg: Config{Dir: "2fa"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Normalize()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.Package != tt.wantPkg {
				t.Errorf("Package = %q, want %q", cfg.Package, tt.wantPkg)
			}
		})
	}
}

func createProject(t *testing.T, name string) (string, []string) {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/app\n\ngo 1.24\n"), 0644); err != nil {
		t.Fatal(err)
	}
	tmpl, err := Get(name)
	if err != nil {
		t.Fatal(err)
	}
	files, err := tmpl.Create(root, Config{Dir: "screens"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	return root, files
}

func TestTemplate_Create_Minimal(t *testing.T) {
	root, files := createProject(t, "minimal")

	if len(files) != 3 {
		t.Fatalf("files = %v, want 3", files)
	}
	config, err := os.ReadFile(filepath.Join(root, "navgen.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(config), "dir: screens") || !strings.Contains(string(config), "func: Routes") {
		t.Errorf("navgen.yaml:\n%s", config)
	}

	pkg, err := routegen.NewScanner(filepath.Join(root, "screens")).Scan()
	if err != nil {
		t.Fatalf("scaffolded package does not scan: %v", err)
	}
	if pkg.Name != "screens" || len(pkg.Handlers) != 2 {
		t.Errorf("package %s has %d handlers", pkg.Name, len(pkg.Handlers))
	}
	if _, err := routegen.NewGenerator(pkg, "").Generate(); err != nil {
		t.Errorf("Generate error: %v", err)
	}
}

func TestTemplate_Create_Results(t *testing.T) {
	root, _ := createProject(t, "results")

	pkg, err := routegen.NewScanner(filepath.Join(root, "screens")).Scan()
	if err != nil {
		t.Fatalf("scaffolded package does not scan: %v", err)
	}
	if len(pkg.Handlers) != 3 {
		t.Fatalf("handlers = %d, want 3", len(pkg.Handlers))
	}
	confirm := pkg.Handlers[0]
	if confirm.Name != "ConfirmDialog" || confirm.Presentation != registry.Modal || confirm.Invocation != registry.InvokeWithHolder {
		t.Errorf("ConfirmDialog = %+v", confirm)
	}
	if confirm.HolderConstructor != "NewConfirmModel" {
		t.Errorf("HolderConstructor = %q", confirm.HolderConstructor)
	}
}

func TestTemplate_Create_RefusesOverwrite(t *testing.T) {
	root := t.TempDir()
	keys := filepath.Join(root, "screens", "keys.go")
	if err := os.MkdirAll(filepath.Dir(keys), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keys, []byte("package screens\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tmpl, _ := Get("minimal")
	_, err := tmpl.Create(root, Config{})
	var ne *errors.NavError
	if !stderrors.As(err, &ne) || ne.Code != "E145" {
		t.Fatalf("Create error = %v, want E145", err)
	}
	if _, err := os.Stat(filepath.Join(root, "navgen.yaml")); !os.IsNotExist(err) {
		t.Error("nothing should be written when a target exists")
	}
}
