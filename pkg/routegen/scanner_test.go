package routegen

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/navstack/pkg/registry"
)

const screensHeader = `package screens

import (
	"github.com/vango-dev/navstack/pkg/nav"
	"github.com/vango-dev/navstack/pkg/registry"
)
`

// writePackage creates a module at a temp dir with the given files in
// ./screens and returns the package dir.
func writePackage(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/app\n\ngo 1.24\n"), 0644); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(root, "screens")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func findHandler(t *testing.T, pkg *Package, name string) ScannedHandler {
	t.Helper()
	for _, h := range pkg.Handlers {
		if h.Name == name {
			return h
		}
	}
	t.Fatalf("handler %s not found", name)
	return ScannedHandler{}
}

const validScreens = screensHeader + `
type Home struct{ nav.Destination }

type Profile struct {
	nav.Destination
	ID int
}

type Settings struct{ nav.Destination }

type AskName struct {
	nav.Result[string]
}

type SettingsModel struct {
	registry.Holder[Settings]
	Dirty bool
}

func NewSettingsModel(k Settings) *SettingsModel {
	return &SettingsModel{Holder: registry.MakeHolder(k)}
}

//nav:route Home
func HomeScreen() string { return "home" }

// ProfileScreen shows a user.
//
//nav:route Profile screen
func ProfileScreen(k Profile) string { return "profile" }

//nav:route *AskName dialog
func AskNameDialog(h *registry.Holder[*AskName]) string { return "ask" }

//nav:route Settings bottom-sheet
func SettingsSheet(m *SettingsModel) string { return "settings" }

// not a route
func helper() {}
`

func TestScannerScan(t *testing.T) {
	dir := writePackage(t, map[string]string{"screens.go": validScreens})

	pkg, err := NewScanner(dir).Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if pkg.Name != "screens" || pkg.ImportPath != "example.com/app/screens" {
		t.Errorf("package = %s %s", pkg.Name, pkg.ImportPath)
	}
	if len(pkg.Handlers) != 4 {
		t.Fatalf("got %d handlers, want 4", len(pkg.Handlers))
	}
	if pkg.ResultType() != "string" {
		t.Errorf("ResultType() = %q", pkg.ResultType())
	}

	tests := []struct {
		name         string
		keyType      string
		presentation registry.Presentation
		invocation   registry.Invocation
		ctor         string
	}{
		{"HomeScreen", "example.com/app/screens.Home", registry.Plain, registry.InvokeWithNothing, ""},
		{"ProfileScreen", "example.com/app/screens.Profile", registry.Plain, registry.InvokeWithKey, ""},
		{"AskNameDialog", "*example.com/app/screens.AskName", registry.Modal, registry.InvokeWithHolder, "registry.NewHolder[*AskName]"},
		{"SettingsSheet", "example.com/app/screens.Settings", registry.BottomSheet, registry.InvokeWithHolder, "NewSettingsModel"},
	}
	for _, tt := range tests {
		h := findHandler(t, pkg, tt.name)
		if h.KeyType != tt.keyType {
			t.Errorf("%s: KeyType = %q, want %q", tt.name, h.KeyType, tt.keyType)
		}
		if h.Presentation != tt.presentation {
			t.Errorf("%s: Presentation = %v, want %v", tt.name, h.Presentation, tt.presentation)
		}
		if h.Invocation != tt.invocation {
			t.Errorf("%s: Invocation = %v, want %v", tt.name, h.Invocation, tt.invocation)
		}
		if h.HolderConstructor != tt.ctor {
			t.Errorf("%s: HolderConstructor = %q, want %q", tt.name, h.HolderConstructor, tt.ctor)
		}
		if h.Line == 0 || !strings.HasSuffix(h.File, "screens.go") {
			t.Errorf("%s: position %s:%d", tt.name, h.File, h.Line)
		}
	}

	// Sorted by qualified key type.
	for i := 1; i < len(pkg.Handlers); i++ {
		if pkg.Handlers[i-1].KeyType > pkg.Handlers[i].KeyType {
			t.Errorf("handlers not sorted: %s before %s", pkg.Handlers[i-1].KeyType, pkg.Handlers[i].KeyType)
		}
	}
	if pkg.Imports["registry"] != RegistryImportPath {
		t.Errorf("Imports = %v", pkg.Imports)
	}
}

func TestScannerSkipsGeneratedAndTests(t *testing.T) {
	dir := writePackage(t, map[string]string{
		"screens.go":     validScreens,
		"routes_gen.go":  "package screens\n\n//nav:route Home\nfunc Dup() string { return \"\" }\n",
		"other_gen.go":   "// Code generated by hand. DO NOT EDIT.\n\npackage screens\n\n//nav:route Home\nfunc Dup2() string { return \"\" }\n",
		"screens_test.go": "package screens\n\n//nav:route Home\nfunc Dup3() string { return \"\" }\n",
	})

	pkg, err := NewScanner(dir).Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(pkg.Handlers) != 4 {
		t.Errorf("got %d handlers, want 4", len(pkg.Handlers))
	}
}

func TestScannerWithImportPath(t *testing.T) {
	dir := writePackage(t, map[string]string{"screens.go": validScreens})
	pkg, err := NewScanner(dir).WithImportPath("example.org/custom").Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if h := findHandler(t, pkg, "HomeScreen"); h.KeyType != "example.org/custom.Home" {
		t.Errorf("KeyType = %q", h.KeyType)
	}
}

func TestScannerSelectorKeys(t *testing.T) {
	dir := writePackage(t, map[string]string{"screens.go": `package screens

import (
	keys "example.com/app/keys"
)

//nav:route keys.Profile modal
func ProfileDialog(k keys.Profile) {}

//nav:route *keys.AskName
func AskNameScreen() {}
`})

	pkg, err := NewScanner(dir).Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if h := findHandler(t, pkg, "ProfileDialog"); h.KeyType != "example.com/app/keys.Profile" || h.Invocation != registry.InvokeWithKey {
		t.Errorf("ProfileDialog = %+v", h)
	}
	if h := findHandler(t, pkg, "AskNameScreen"); h.KeyType != "*example.com/app/keys.AskName" {
		t.Errorf("AskNameScreen.KeyType = %q", h.KeyType)
	}
	if pkg.Imports["keys"] != "example.com/app/keys" {
		t.Errorf("Imports = %v", pkg.Imports)
	}
	if pkg.ResultType() != "" {
		t.Errorf("ResultType() = %q, want empty", pkg.ResultType())
	}
}

func TestScannerErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want BuildErrorType
	}{
		{
			name: "duplicate key",
			src: `
type Settings struct{ nav.Destination }

//nav:route Settings
func SettingsScreen() {}

//nav:route Settings modal
func SettingsDialog() {}

var _ registry.Presentation
`,
			want: ErrorDuplicateKey,
		},
		{
			name: "empty directive",
			src: `
//nav:route
func Broken() {}

var _ nav.Key
var _ registry.Presentation
`,
			want: ErrorInvalidDirective,
		},
		{
			name: "not a type name",
			src: `
//nav:route []Home
func Broken() {}

var _ nav.Key
var _ registry.Presentation
`,
			want: ErrorInvalidDirective,
		},
		{
			name: "unknown presentation",
			src: `
type Home struct{ nav.Destination }

//nav:route Home popover
func HomeScreen() {}

var _ registry.Presentation
`,
			want: ErrorInvalidPresentation,
		},
		{
			name: "method",
			src: `
type Home struct{ nav.Destination }

type screens struct{}

//nav:route Home
func (screens) HomeScreen() {}

var _ registry.Presentation
`,
			want: ErrorNotPlainFunc,
		},
		{
			name: "type parameters",
			src: `
type Home struct{ nav.Destination }

//nav:route Home
func HomeScreen[T any]() {}

var _ registry.Presentation
`,
			want: ErrorNotPlainFunc,
		},
		{
			name: "locally scoped key",
			src: `
func setup() {
	type Local struct{ nav.Destination }
	_ = Local{}
}

//nav:route Local
func LocalScreen() {}

var _ registry.Presentation
`,
			want: ErrorLocalKeyType,
		},
		{
			name: "interface key",
			src: `
type Any interface{ nav.Key }

//nav:route Any
func AnyScreen() {}

var _ registry.Presentation
`,
			want: ErrorInterfaceKeyType,
		},
		{
			name: "unresolved key",
			src: `
//nav:route Missing
func MissingScreen() {}

//nav:route other.Thing
func OtherScreen() {}

var _ nav.Key
var _ registry.Presentation
`,
			want: ErrorUnresolvedKeyType,
		},
		{
			name: "unrelated parameter",
			src: `
type Profile struct{ nav.Destination }

//nav:route Profile
func ProfileScreen(id int) {}

var _ registry.Presentation
`,
			want: ErrorBadSignature,
		},
		{
			name: "holder for another key",
			src: `
type Profile struct{ nav.Destination }
type Home struct{ nav.Destination }

//nav:route Profile
func ProfileScreen(h *registry.Holder[Home]) {}
`,
			want: ErrorBadSignature,
		},
		{
			name: "holder struct without constructor",
			src: `
type Profile struct{ nav.Destination }

type ProfileModel struct {
	registry.Holder[Profile]
}

//nav:route Profile
func ProfileScreen(m *ProfileModel) {}
`,
			want: ErrorBadSignature,
		},
		{
			name: "too many parameters",
			src: `
type Profile struct{ nav.Destination }

//nav:route Profile
func ProfileScreen(a, b Profile) {}

var _ registry.Presentation
`,
			want: ErrorBadSignature,
		},
		{
			name: "two results",
			src: `
type Profile struct{ nav.Destination }

//nav:route Profile
func ProfileScreen() (string, error) { return "", nil }

var _ registry.Presentation
`,
			want: ErrorBadSignature,
		},
		{
			name: "result mismatch",
			src: `
type Home struct{ nav.Destination }
type Profile struct{ nav.Destination }

//nav:route Home
func HomeScreen() string { return "" }

//nav:route Profile
func ProfileScreen() int { return 0 }

var _ registry.Presentation
`,
			want: ErrorResultMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writePackage(t, map[string]string{"screens.go": screensHeader + tt.src})
			_, err := NewScanner(dir).Scan()
			if err == nil {
				t.Fatal("Scan() succeeded, want an error")
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Scan() error = %v, want %s", err, tt.want)
			}
			var multi *MultiBuildError
			if !errors.As(err, &multi) || len(multi.Errors) == 0 {
				t.Fatalf("error is not a *MultiBuildError: %T", err)
			}
			if multi.Errors[0].File == "" || multi.Errors[0].Line == 0 {
				t.Errorf("error has no position: %+v", multi.Errors[0])
			}
		})
	}
}

func TestScannerDuplicateNamesEveryHandler(t *testing.T) {
	dir := writePackage(t, map[string]string{
		"a.go": screensHeader + "\ntype Settings struct{ nav.Destination }\n\n//nav:route Settings\nfunc SettingsScreen() {}\n\nvar _ registry.Presentation\n",
		"b.go": "package screens\n\n//nav:route Settings modal\nfunc SettingsDialog() {}\n",
	})

	_, err := NewScanner(dir).Scan()
	var multi *MultiBuildError
	if !errors.As(err, &multi) {
		t.Fatalf("Scan() error = %v", err)
	}
	msg := multi.Errors[0].Details
	if !strings.Contains(msg, "SettingsScreen") || !strings.Contains(msg, "SettingsDialog") {
		t.Errorf("details do not name both handlers: %q", msg)
	}
}

func TestScannerImportConflict(t *testing.T) {
	dir := writePackage(t, map[string]string{
		"a.go": "package screens\n\nimport k \"example.com/app/keys\"\n\n//nav:route k.Home\nfunc HomeScreen() {}\n",
		"b.go": "package screens\n\nimport k \"example.com/app/otherkeys\"\n\n//nav:route k.Profile\nfunc ProfileScreen() {}\n",
	})
	if _, err := NewScanner(dir).Scan(); !errors.Is(err, ErrorImportConflict) {
		t.Fatalf("Scan() error = %v, want %s", err, ErrorImportConflict)
	}
}

func TestScannerParseErrors(t *testing.T) {
	dir := writePackage(t, map[string]string{"bad.go": "package screens\n\nfunc {"})
	if _, err := NewScanner(dir).Scan(); err == nil || !strings.Contains(err.Error(), "scanning") {
		t.Fatalf("Scan() error = %v", err)
	}

	empty := writePackage(t, nil)
	if _, err := NewScanner(empty).Scan(); err == nil {
		t.Fatal("Scan() of an empty dir should fail")
	}

	mixed := writePackage(t, map[string]string{
		"a.go": "package screens\n",
		"b.go": "package other\n",
	})
	if _, err := NewScanner(mixed).Scan(); err == nil {
		t.Fatal("Scan() of mixed packages should fail")
	}
}

func TestScanWithoutValidation(t *testing.T) {
	dir := writePackage(t, map[string]string{"screens.go": screensHeader + `
type Settings struct{ nav.Destination }

//nav:route Settings
func SettingsScreen() {}

//nav:route Settings
func SettingsDialog() {}

var _ registry.Presentation
`})
	pkg, err := NewScanner(dir).ScanWithOptions(ScanOptions{Validate: false})
	if err != nil {
		t.Fatalf("ScanWithOptions() error: %v", err)
	}
	if len(pkg.Handlers) != 2 {
		t.Errorf("got %d handlers, want 2", len(pkg.Handlers))
	}
}

func TestResolveImportPath(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/app\n"), 0644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "internal", "ui")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		dir  string
		want string
	}{
		{root, "example.com/app"},
		{nested, "example.com/app/internal/ui"},
	}
	for _, tt := range tests {
		got, err := ResolveImportPath(tt.dir)
		if err != nil {
			t.Errorf("ResolveImportPath(%s): %v", tt.dir, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveImportPath(%s) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func TestDefaultImportName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"example.com/app/keys", "keys"},
		{"github.com/go-chi/chi/v5", "chi"},
		{"gopkg.in/yaml.v3", "yaml"},
		{"github.com/vango-dev/navstack/pkg/registry", "registry"},
		{"example.com/my-keys", "my_keys"},
	}
	for _, tt := range tests {
		if got := defaultImportName(tt.path); got != tt.want {
			t.Errorf("defaultImportName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
