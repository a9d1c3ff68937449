package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/navstack/pkg/keycodec"
	"github.com/vango-dev/navstack/pkg/routegen"
	"github.com/vango-dev/navstack/pkg/store"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{name: "build error", code: "E108", wantMsg: "Duplicate route", wantCat: CategoryBuild},
		{name: "config error", code: "E121", wantMsg: "Import path unknown", wantCat: CategoryConfig},
		{name: "cli error", code: "E141", wantMsg: "Generated routes are stale", wantCat: CategoryCLI},
		{name: "store error", code: "E160", wantMsg: "Saved stack not found", wantCat: CategoryStore},
		{name: "unknown code", code: "E999", wantMsg: "Unknown error", wantCat: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNavErrorError(t *testing.T) {
	if got := New("E101").Error(); got != "E101: Invalid route directive" {
		t.Errorf("Error() = %q", got)
	}
	if got := Newf(CategoryCLI, "no such dir %q", "x").Error(); got != `no such dir "x"` {
		t.Errorf("Error() = %q", got)
	}
}

func writeSource(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "screens.go")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWithLocationReadsContext(t *testing.T) {
	path := writeSource(t,
		"package screens",
		"",
		"//nav:route Profile popover",
		"func ProfileScreen(p Profile) {}",
		"",
		"type Profile struct{}",
	)

	err := New("E102").WithLocation(path, 3, 1)
	if err.ContextStart != 1 {
		t.Errorf("ContextStart = %d, want 1", err.ContextStart)
	}
	if len(err.Context) != 5 {
		t.Fatalf("len(Context) = %d, want 5", len(err.Context))
	}
	if err.Context[2] != "//nav:route Profile popover" {
		t.Errorf("Context[2] = %q", err.Context[2])
	}

	// Line 6 has only one line after it.
	err = New("E102").WithLocation(path, 6, 1)
	if err.ContextStart != 4 || len(err.Context) != 3 {
		t.Errorf("ContextStart = %d, len = %d, want 4, 3", err.ContextStart, len(err.Context))
	}
}

func TestWithLocationMissingFile(t *testing.T) {
	err := New("E101").WithLocation(filepath.Join(t.TempDir(), "gone.go"), 3, 1)
	if err.Location == nil || err.Location.Line != 3 {
		t.Fatalf("Location = %v", err.Location)
	}
	if err.Context != nil {
		t.Errorf("Context = %v, want nil", err.Context)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E100") != nil {
		t.Error("FromError(nil) should return nil")
	}

	ne := New("E101")
	if FromError(ne, "E100") != ne {
		t.Error("FromError should return a NavError as-is")
	}

	plain := fmt.Errorf("boom")
	wrapped := FromError(plain, "E142")
	if wrapped.Code != "E142" || !stderrors.Is(wrapped, plain) {
		t.Errorf("FromError = %+v", wrapped)
	}
}

func TestFromBuild(t *testing.T) {
	path := writeSource(t,
		"package screens",
		"",
		"//nav:route Settings",
		"func SettingsDialog(s Settings) {}",
	)
	multi := &routegen.MultiBuildError{Errors: []routegen.BuildError{
		{
			Type:    routegen.ErrorDuplicateKey,
			Message: "Duplicate route for Settings",
			Handler: "SettingsScreen, SettingsDialog",
			File:    path,
			Line:    3,
			Column:  1,
			Details: "handlers SettingsScreen, SettingsDialog",
		},
		{Type: routegen.ErrorBadSignature, Message: "ProfileScreen takes int"},
	}}

	got := FromBuild(fmt.Errorf("scan: %w", multi))
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	dup := got[0]
	if dup.Code != "E108" {
		t.Errorf("Code = %q, want E108", dup.Code)
	}
	if dup.Message != "Duplicate route for Settings" {
		t.Errorf("Message = %q", dup.Message)
	}
	if dup.Detail != "handlers SettingsScreen, SettingsDialog" {
		t.Errorf("Detail = %q", dup.Detail)
	}
	if dup.Suggestion == "" {
		t.Error("Suggestion should come from the template")
	}
	if len(dup.Context) == 0 {
		t.Error("Context should be read from the source file")
	}
	if !stderrors.Is(dup, routegen.ErrorDuplicateKey) {
		t.Error("NavError should unwrap to its build error type")
	}

	if got[1].Code != "E107" || got[1].Location != nil {
		t.Errorf("second = %+v", got[1])
	}
}

func TestFromBuildOther(t *testing.T) {
	if FromBuild(nil) != nil {
		t.Error("FromBuild(nil) should return nil")
	}
	got := FromBuild(fmt.Errorf("parse failure"))
	if len(got) != 1 || got[0].Code != "E100" {
		t.Errorf("FromBuild = %+v", got)
	}
	single := FromBuild(routegen.BuildError{Type: routegen.ErrorImportConflict, Message: "x"})
	if len(single) != 1 || single[0].Code != "E110" {
		t.Errorf("FromBuild = %+v", single)
	}
}

func TestFromStoreError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("load: %w", store.ErrNotFound), "E160"},
		{fmt.Errorf("entry 0: %w", keycodec.ErrUnknownType), "E161"},
		{fmt.Errorf("bad json"), "E161"},
	}
	for _, tt := range tests {
		if got := FromStoreError(tt.err); got.Code != tt.want {
			t.Errorf("FromStoreError(%v) = %s, want %s", tt.err, got.Code, tt.want)
		}
	}
	if FromStoreError(nil) != nil {
		t.Error("FromStoreError(nil) should return nil")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	path := writeSource(t,
		"package screens",
		"",
		"//nav:route Profile popover",
		"func ProfileScreen(p Profile) {}",
	)
	formatted := New("E102").
		WithLocation(path, 3, 1).
		WithHandler("ProfileScreen").
		WithExample("//nav:route Profile modal").
		Format()

	wants := []string{
		"ERROR E102: Unknown presentation",
		path + ":3:1 in ProfileScreen",
		"→    3 │ //nav:route Profile popover",
		"Hint: Use one of plain, modal or bottom-sheet",
		"Example:",
		"Learn more: ",
	}
	for _, want := range wants {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	got := New("E101").WithLocation("screens.go", 10, 5).FormatCompact()
	want := "screens.go:10:5: E101: Invalid route directive"
	if got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	out := New("E108").WithLocation("screens.go", 10, 5).WithHandler("A, B").FormatJSON()

	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("FormatJSON() is not JSON: %v\n%s", err, out)
	}
	if decoded["code"] != "E108" || decoded["category"] != "build" || decoded["handler"] != "A, B" {
		t.Errorf("decoded = %v", decoded)
	}
	loc, ok := decoded["location"].(map[string]any)
	if !ok || loc["line"] != float64(10) {
		t.Errorf("location = %v", decoded["location"])
	}
}

func TestCodes(t *testing.T) {
	codes := Codes()
	if len(codes) != len(registry) {
		t.Fatalf("len = %d, want %d", len(codes), len(registry))
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Errorf("codes not sorted at %d: %v", i, codes)
		}
	}
	for _, code := range buildCodes {
		if _, ok := GetTemplate(code); !ok {
			t.Errorf("build code %s has no template", code)
		}
	}
}

func TestWrapText(t *testing.T) {
	if got := wrapText("short text", 100); len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short: %v", got)
	}
	if got := wrapText("this is a longer text that should be wrapped", 20); len(got) != 3 {
		t.Errorf("wrapText long: %d lines: %v", len(got), got)
	}
	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: %v", got)
	}
}

func TestDisableColors(t *testing.T) {
	DisableColors()
	defer EnableColors()
	if got := red("test"); got != "test" {
		t.Errorf("red() = %q with colors disabled", got)
	}
}
