package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// ioFlags holds input/output flags.
type ioFlags struct {
	input  string
	output string
}

// metaFlags holds manual header flags.
type metaFlags struct {
	program       string
	section       string
	title         string
	manualSection string
	source        string
}

// validationFlags holds schema validation flags.
type validationFlags struct {
	validate bool
	schema   string
}

// commonFlags holds flags shared across runs.
type commonFlags struct {
	quiet   bool
	verbose bool
	version bool
}

// cliFlags holds all flags for the md2roff command.
type cliFlags struct {
	io         ioFlags
	meta       metaFlags
	validation validationFlags
	common     commonFlags
}

// addIOFlags adds input/output flags to a FlagSet.
func addIOFlags(fs *flag.FlagSet, f *ioFlags) {
	fs.StringVarP(&f.input, "input", "i", "-", "input file path (\"-\" = stdin)")
	fs.StringVarP(&f.output, "output", "o", "", "output file path (default stdout)")
}

// addMetaFlags adds manual header flags to a FlagSet.
func addMetaFlags(fs *flag.FlagSet, f *metaFlags) {
	fs.StringVarP(&f.program, "program", "p", "", "program name for the .TH header")
	fs.StringVarP(&f.section, "section", "s", "1", "man section number")
	fs.StringVarP(&f.title, "title", "t", "", "manual title")
	fs.StringVarP(&f.manualSection, "manual-section", "m", "", "manual section label")
	fs.StringVar(&f.source, "source", "", "source string for the .TH header")
}

// addValidationFlags adds schema validation flags to a FlagSet.
func addValidationFlags(fs *flag.FlagSet, f *validationFlags) {
	fs.BoolVar(&f.validate, "validate", false, "validate YAML input against the manual schema")
	fs.StringVar(&f.schema, "schema", "", "schema file overriding the embedded default")
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show conversion details")
	fs.BoolVar(&f.version, "version", false, "show version information")
}

// parseFlags parses the command line and returns positional args.
func parseFlags(args []string, usageOut io.Writer) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("md2roff", flag.ContinueOnError)
	f := &cliFlags{}

	addIOFlags(fs, &f.io)
	addMetaFlags(fs, &f.meta)
	addValidationFlags(fs, &f.validation)
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printUsage(usageOut) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
