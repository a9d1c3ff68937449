package errors

import "sort"

// ErrorTemplate is the registered text of an error code.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

const docBase = "https://github.com/vango-dev/navstack/blob/main/docs/errors.md#"

var registry = map[string]ErrorTemplate{
	// Route build errors (E100-E119)

	"E100": {
		Category: CategoryBuild,
		Message:  "Route table build failed",
		Detail:   "The route package could not be scanned.",
		DocURL:   docBase + "e100",
	},
	"E101": {
		Category:   CategoryBuild,
		Message:    "Invalid route directive",
		Detail:     "A //nav:route comment must name a key type, optionally followed by a presentation.",
		Suggestion: "Write the directive as //nav:route <KeyType> [plain|modal|bottom-sheet]",
		DocURL:     docBase + "e101",
	},
	"E102": {
		Category:   CategoryBuild,
		Message:    "Unknown presentation",
		Detail:     "Presentations are plain, modal and bottom-sheet.",
		Suggestion: "Use one of plain, modal or bottom-sheet",
		DocURL:     docBase + "e102",
	},
	"E103": {
		Category:   CategoryBuild,
		Message:    "Route handler is not a plain function",
		Detail:     "Methods and generic functions cannot be referenced from the generated table.",
		Suggestion: "Move the directive to a top-level, non-generic function",
		DocURL:     docBase + "e103",
	},
	"E104": {
		Category:   CategoryBuild,
		Message:    "Route key is declared locally",
		Detail:     "Key types declared inside a function body are invisible to generated code.",
		Suggestion: "Declare the key type at package level",
		DocURL:     docBase + "e104",
	},
	"E105": {
		Category:   CategoryBuild,
		Message:    "Route key is an interface",
		Detail:     "Routes are looked up by the dynamic type of a key, which is never an interface.",
		Suggestion: "Route a concrete struct type instead",
		DocURL:     docBase + "e105",
	},
	"E106": {
		Category:   CategoryBuild,
		Message:    "Route key type not found",
		Detail:     "The directive names a type that is neither declared in the package nor reachable through an import.",
		DocURL:     docBase + "e106",
	},
	"E107": {
		Category:   CategoryBuild,
		Message:    "Handler parameters do not fit the key",
		Detail:     "A handler takes nothing, the key, or a holder built from the key.",
		Suggestion: "Accept the key type, a holder for it, or no parameters",
		DocURL:     docBase + "e107",
	},
	"E108": {
		Category:   CategoryBuild,
		Message:    "Duplicate route",
		Detail:     "Each key type maps to exactly one handler.",
		Suggestion: "Remove one of the directives or route a distinct key type",
		DocURL:     docBase + "e108",
	},
	"E109": {
		Category:   CategoryBuild,
		Message:    "Handlers disagree on their result type",
		Detail:     "The generated table has a single view type shared by every handler.",
		DocURL:     docBase + "e109",
	},
	"E110": {
		Category:   CategoryBuild,
		Message:    "Import name conflict",
		Detail:     "The same import name refers to different packages in different files.",
		Suggestion: "Use one alias per import path across the route package",
		DocURL:     docBase + "e110",
	},

	// Configuration errors (E120-E129)

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "navgen.json or navgen.yaml could not be parsed.",
		DocURL:   docBase + "e120",
	},
	"E121": {
		Category:   CategoryConfig,
		Message:    "Import path unknown",
		Detail:     "No go.mod was found above the route directory and no import path was configured.",
		Suggestion: "Set importPath in navgen.json or pass --import-path",
		DocURL:     docBase + "e121",
	},

	// CLI errors (E140-E149)

	"E140": {
		Category: CategoryCLI,
		Message:  "Route directory not found",
		Detail:   "The directory passed to navgen does not exist.",
		DocURL:   docBase + "e140",
	},
	"E141": {
		Category:   CategoryCLI,
		Message:    "Generated routes are stale",
		Detail:     "The route table on disk differs from what navgen would generate.",
		Suggestion: "Run navgen gen and commit the result",
		DocURL:     docBase + "e141",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Could not write generated routes",
		DocURL:   docBase + "e142",
	},
	"E143": {
		Category: CategoryCLI,
		Message:  "Unknown output format",
		Detail:   "Supported formats are table, json and yaml.",
		DocURL:   docBase + "e143",
	},
	"E144": {
		Category: CategoryCLI,
		Message:  "Unknown template",
		DocURL:   docBase + "e144",
	},
	"E145": {
		Category:   CategoryCLI,
		Message:    "File already exists",
		Detail:     "navgen init never overwrites files.",
		Suggestion: "Pick another --dir or remove the existing files",
		DocURL:     docBase + "e145",
	},
	"E146": {
		Category:   CategoryCLI,
		Message:    "Invalid package name",
		Suggestion: "Pass --package with a valid Go identifier",
		DocURL:     docBase + "e146",
	},

	// Stack store errors (E160-E169)

	"E160": {
		Category: CategoryStore,
		Message:  "Saved stack not found",
		DocURL:   docBase + "e160",
	},
	"E161": {
		Category: CategoryStore,
		Message:  "Saved stack could not be decoded",
		Detail:   "The snapshot references a key type that is not registered, or its data does not match the type.",
		DocURL:   docBase + "e161",
	},
}

// Codes returns every registered code in order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
