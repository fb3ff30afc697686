// Command mulberry is the schema tooling CLI around pkg/schema,
// pkg/typeresolve, and pkg/codegen.
//
// Usage:
//
//	mulberry validate <schema-file>...
//	mulberry resolve -struct <name> <schema-file> <go-package>
//	mulberry generate [options] <schema-file>...
//	mulberry version
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blockberries/mulberry/pkg/codegen"
	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate", "val":
		cmdValidate(os.Args[2:])
	case "resolve":
		cmdResolve(os.Args[2:])
	case "generate", "gen":
		cmdGenerate(os.Args[2:])
	case "version":
		fmt.Printf("mulberry version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mulberry schema tooling

Usage:
  mulberry <command> [options] <files>...

Commands:
  validate    Check schema files for structural problems
  resolve     Check a schema's fields against a Go struct ahead of decode time
  generate    Generate Go struct stubs from a schema file
  version     Print version information
  help        Print this help message

Run 'mulberry <command> -h' for command-specific help.`)
}

func loadSchema(path string) (schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	s, err := schema.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Println(`Usage: mulberry validate <schema-file>...

Parse and structurally validate schema files (duplicate enum symbols,
duplicate record fields, nested unions, decimal scale/precision, and
duration physical size).`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		fs.Usage()
		os.Exit(1)
	}

	hasErrors := false
	for _, path := range fs.Args() {
		s, err := loadSchema(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			hasErrors = true
			continue
		}
		problems := schema.Validate(s)
		if len(problems) == 0 {
			fmt.Printf("Valid: %s\n", path)
			continue
		}
		hasErrors = true
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, p)
		}
	}
	if hasErrors {
		os.Exit(1)
	}
}

func cmdResolve(args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	structName := fs.String("struct", "", "Name of the Go struct to check the schema against")
	fs.Usage = func() {
		fmt.Println(`Usage: mulberry resolve -struct <name> <schema-file> <go-package>

Load a schema and a Go package, and report which top-level record fields
have no name-matched member on the named struct: the fields the builder
would otherwise silently skip at decode time.

Options:`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *structName == "" || fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: -struct and exactly one schema file plus one Go package are required")
		fs.Usage()
		os.Exit(1)
	}

	s, err := loadSchema(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rs, ok := s.(*schema.RecordSchema)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: %s is not a record schema (got %s)\n", fs.Arg(0), s.Kind())
		os.Exit(1)
	}

	loader := typeresolve.NewStaticLoader()
	pkgs, err := loader.Load(fs.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(pkgs) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no packages matched %q\n", fs.Arg(1))
		os.Exit(1)
	}

	rec, err := typeresolve.FindStruct(pkgs[0], *structName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	names := make([]string, len(rs.Fields))
	for i, f := range rs.Fields {
		names[i] = f.Name
	}
	missing := typeresolve.MissingSchemaFields(rec, names)
	if len(missing) == 0 {
		fmt.Printf("%s matches every field of %s\n", *structName, rs.Name)
		return
	}
	fmt.Printf("%s is missing %d field(s) from %s:\n", *structName, len(missing), rs.Name)
	for _, m := range missing {
		fmt.Printf("  %s\n", m)
	}
	os.Exit(1)
}

func cmdGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	outDir := fs.String("out", ".", "Output directory")
	pkg := fs.String("package", "", "Override package name")
	prefix := fs.String("prefix", "", "Add prefix to all type names")
	fs.Usage = func() {
		fmt.Println(`Usage: mulberry generate [options] <schema-file>...

Generate a Go struct stub file for each record schema file given.

Options:`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		fs.Usage()
		os.Exit(1)
	}

	opts := codegen.DefaultOptions
	if *pkg != "" {
		opts.Package = *pkg
	}
	opts.TypePrefix = *prefix

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	hasErrors := false
	for _, path := range fs.Args() {
		s, err := loadSchema(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			hasErrors = true
			continue
		}
		rs, ok := s.(*schema.RecordSchema)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: %s is not a record schema (got %s)\n", path, s.Kind())
			hasErrors = true
			continue
		}

		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		outPath := filepath.Join(*outDir, base+"_gen.go")
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", outPath, err)
			hasErrors = true
			continue
		}
		if err := codegen.New(opts).Generate(f, rs); err != nil {
			f.Close()
			os.Remove(outPath)
			fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", outPath, err)
			hasErrors = true
			continue
		}
		f.Close()
		fmt.Printf("Generated: %s\n", outPath)
	}
	if hasErrors {
		os.Exit(1)
	}
}
