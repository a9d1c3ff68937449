// Package errors provides the coded errors printed by navgen.
//
// Every code maps to a registered template with a category, a short
// message, a longer explanation and a documentation link. Codes are grouped:
//
//   - E100-E119: route table build errors, one per routegen.BuildErrorType
//   - E120-E129: configuration errors
//   - E140-E149: CLI errors
//   - E160-E169: stack store errors
//
// # Usage
//
//	for _, e := range errors.FromBuild(err) {
//	    fmt.Fprint(os.Stderr, e.Format())
//	}
//	// Output:
//	// ERROR E108: Duplicate route for Settings
//	//
//	//   screens/settings.go:21:1 in SettingsScreen, SettingsDialog
//	//
//	//       19 │ }
//	//       20 │
//	//   →   21 │ //nav:route Settings
//	//          │ ^
//	//       22 │ func SettingsDialog(s Settings) tea.Model {
//	//
//	//   handlers SettingsScreen at screens/settings.go:9, ...
//	//
//	//   Hint: Remove one of the directives or route a distinct key type
package errors
