package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2roff [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert Markdown or YAML manuals to man-compatible roff.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -i, --input <path>          Input file (\"-\" = stdin, default)")
	fmt.Fprintln(w, "  -o, --output <path>         Output file (default stdout)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Manual Header:")
	fmt.Fprintln(w, "  -p, --program <name>        Program name (required)")
	fmt.Fprintln(w, "  -s, --section <n>           Man section number (default 1)")
	fmt.Fprintln(w, "  -t, --title <s>             Manual title (required)")
	fmt.Fprintln(w, "  -m, --manual-section <s>    Manual section label")
	fmt.Fprintln(w, "      --source <s>            Source string")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Validation:")
	fmt.Fprintln(w, "      --validate              Validate YAML input against the manual schema")
	fmt.Fprintln(w, "      --schema <path>         Schema file overriding the embedded default")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show conversion details")
	fmt.Fprintln(w, "      --version               Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input format is detected from the file extension (.md/.markdown,")
	fmt.Fprintln(w, ".yml/.yaml); stdin content is auto-detected.")
}
