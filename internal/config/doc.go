// Package config loads navgen settings.
//
// Settings come from navgen.json or navgen.yaml at the project root,
// NAVGEN_* environment variables and command-line flags, in increasing
// order of precedence.
//
// # Configuration File Structure
//
//	{
//	  "dir": "internal/screens",
//	  "output": "routes_gen.go",
//	  "func": "Routes",
//	  "importPath": "example.com/app/internal/screens",
//	  "debounce": "300ms"
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir(cmd.Flags())
//	if err != nil {
//	    return err
//	}
//	fmt.Println("generating", cfg.OutputPath())
package config
