package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	md2roff "github.com/alnah/go-md2roff"
)

// Sentinel errors for CLI operations.
var (
	ErrReadInput   = errors.New("failed to read input")
	ErrReadSchema  = errors.New("failed to read schema file")
	ErrWriteOutput = errors.New("failed to write output")
)

// inputKind classifies how the input should be converted.
type inputKind int

const (
	inputAuto inputKind = iota
	inputMarkdown
	inputYAML
)

// detectInputKind maps a path to a conversion route by extension.
// Stdin has no extension, so its content decides later.
func detectInputKind(path string) inputKind {
	if path == "-" {
		return inputAuto
	}
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return inputYAML
	case strings.HasSuffix(lower, ".md"), strings.HasSuffix(lower, ".markdown"):
		return inputMarkdown
	}
	return inputMarkdown
}

// sniffMarkdown reports whether auto-detected content looks like a
// Markdown document: first non-whitespace byte is '#' and no YAML
// document markers appear.
func sniffMarkdown(content string) bool {
	trimmed := strings.TrimLeft(content, " \t\r\n")
	if !strings.HasPrefix(trimmed, "#") {
		return false
	}
	for _, line := range strings.Split(content, "\n") {
		if line == "---" || strings.HasPrefix(line, "%YAML") {
			return false
		}
	}
	return true
}

// dependencies carries the process streams so runs can be tested.
type dependencies struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// readInput loads the whole input before any adaptation starts.
func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrReadInput, err)
		}
		return string(content), nil
	}
	content, err := os.ReadFile(path) // #nosec G304 -- user-supplied input path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	return string(content), nil
}

// writeOutput writes the rendered roff to a file or stdout. It is only
// called on success, so a failed conversion never leaves partial output.
func writeOutput(path, roff string, stdout io.Writer) error {
	if path == "" {
		if _, err := io.WriteString(stdout, roff); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}
	if err := os.WriteFile(path, []byte(roff), 0o644); err != nil { // #nosec G306 -- manual pages are world-readable
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// buildConverter assembles the converter from validation flags.
func buildConverter(f *validationFlags) (*md2roff.Converter, error) {
	var opts []md2roff.Option
	if f.validate {
		opts = append(opts, md2roff.WithValidation())
	}
	if f.schema != "" {
		schema, err := os.ReadFile(f.schema) // #nosec G304 -- user-supplied schema path
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadSchema, err)
		}
		opts = append(opts, md2roff.WithSchema(schema))
	}
	return md2roff.NewConverter(opts...), nil
}

// run executes one conversion from flags to output.
func run(ctx context.Context, flags *cliFlags, deps *dependencies) error {
	if flags.common.version {
		fmt.Fprintf(deps.stdout, "md2roff %s\n", Version)
		return nil
	}

	meta, err := md2roff.NewManualMeta(
		flags.meta.program,
		flags.meta.section,
		flags.meta.title,
		flags.meta.manualSection,
		flags.meta.source,
	)
	if err != nil {
		return err
	}

	content, err := readInput(flags.io.input, deps.stdin)
	if err != nil {
		return err
	}

	conv, err := buildConverter(&flags.validation)
	if err != nil {
		return err
	}

	kind := detectInputKind(flags.io.input)
	if flags.common.verbose && !flags.common.quiet {
		fmt.Fprintf(deps.stderr, "input: %s (%s)\n", flags.io.input, kindName(kind))
	}

	roff, err := convert(ctx, conv, kind, content, meta)
	if err != nil {
		return err
	}

	if err := writeOutput(flags.io.output, roff, deps.stdout); err != nil {
		return err
	}
	if flags.common.verbose && !flags.common.quiet && flags.io.output != "" {
		fmt.Fprintf(deps.stderr, "wrote %s\n", flags.io.output)
	}
	return nil
}

// convert routes the content through the matching adapter. Auto mode
// sniffs the content, preferring the YAML path when sniffing is
// inconclusive and falling back to Markdown on YAML-side failures.
func convert(ctx context.Context, conv *md2roff.Converter, kind inputKind, content string, meta md2roff.ManualMeta) (string, error) {
	switch kind {
	case inputYAML:
		return conv.ConvertYAML(ctx, content, meta)
	case inputMarkdown:
		return conv.ConvertMarkdown(ctx, content, meta)
	}

	if sniffMarkdown(content) {
		return conv.ConvertMarkdown(ctx, content, meta)
	}
	roff, err := conv.ConvertYAML(ctx, content, meta)
	if err == nil {
		return roff, nil
	}
	if errors.Is(err, md2roff.ErrYamlParse) || errors.Is(err, md2roff.ErrYamlShape) {
		return conv.ConvertMarkdown(ctx, content, meta)
	}
	return "", err
}

func kindName(kind inputKind) string {
	switch kind {
	case inputYAML:
		return "yaml"
	case inputMarkdown:
		return "markdown"
	}
	return "auto"
}
