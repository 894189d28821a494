package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	md2roff "github.com/alnah/go-md2roff"
)

const markdownInput = "# mytool(1) -- Example tool\n\n## DESCRIPTION\n\nDoes things.\n"

const yamlInput = `manpage_intro: |
  # mytool(1) -- Example tool
sections:
  - title: Description
    body: |
      Does things.
`

func testFlags() *cliFlags {
	return &cliFlags{
		io:   ioFlags{input: "-"},
		meta: metaFlags{program: "mytool", section: "1", title: "Mytool Manual"},
	}
}

func testDeps(stdin string) (*dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &dependencies{
		stdin:  strings.NewReader(stdin),
		stdout: stdout,
		stderr: stderr,
	}, stdout, stderr
}

func TestDetectInputKind(t *testing.T) {
	tests := []struct {
		path string
		want inputKind
	}{
		{path: "-", want: inputAuto},
		{path: "manual.md", want: inputMarkdown},
		{path: "manual.markdown", want: inputMarkdown},
		{path: "MANUAL.MD", want: inputMarkdown},
		{path: "manual.yaml", want: inputYAML},
		{path: "manual.yml", want: inputYAML},
		{path: "MANUAL.YML", want: inputYAML},
		{path: "manual.txt", want: inputMarkdown},
		{path: "manual", want: inputMarkdown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := detectInputKind(tt.path); got != tt.want {
				t.Errorf("detectInputKind(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestSniffMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{name: "heading first", content: "# tool -- desc\n", want: true},
		{name: "heading after blank lines", content: "\n\n# tool -- desc\n", want: true},
		{name: "yaml mapping", content: "name: tool\n", want: false},
		{name: "document marker", content: "# comment\n---\nname: x\n", want: false},
		{name: "yaml directive", content: "%YAML 1.2\n", want: false},
		{name: "empty", content: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffMarkdown(tt.content); got != tt.want {
				t.Errorf("sniffMarkdown(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestRunMarkdownFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.md")
	out := filepath.Join(dir, "out.roff")
	if err := os.WriteFile(in, []byte(markdownInput), 0o644); err != nil {
		t.Fatal(err)
	}

	flags := testFlags()
	flags.io.input = in
	flags.io.output = out
	deps, stdout, _ := testDeps("")

	if err := run(context.Background(), flags, deps); err != nil {
		t.Fatalf("run() unexpected error: %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty when writing to a file, got %q", stdout.String())
	}

	written, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	for _, frag := range []string{`.TH "mytool" "1" "Mytool Manual"`, `.SH "NAME"`, `Does things\.`} {
		if !strings.Contains(string(written), frag) {
			t.Errorf("output missing %q:\n%s", frag, written)
		}
	}
}

func TestRunYAMLFileWithValidation(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.yml")
	if err := os.WriteFile(in, []byte(yamlInput), 0o644); err != nil {
		t.Fatal(err)
	}

	flags := testFlags()
	flags.io.input = in
	flags.validation.validate = true
	deps, stdout, _ := testDeps("")

	if err := run(context.Background(), flags, deps); err != nil {
		t.Fatalf("run() unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), `.SH "DESCRIPTION"`) {
		t.Errorf("stdout missing converted section:\n%s", stdout.String())
	}
}

func TestRunStdinAutoDetect(t *testing.T) {
	t.Run("markdown on stdin", func(t *testing.T) {
		deps, stdout, _ := testDeps(markdownInput)
		if err := run(context.Background(), testFlags(), deps); err != nil {
			t.Fatalf("run() unexpected error: %v", err)
		}
		if !strings.Contains(stdout.String(), `\fBmytool\fR \- Example tool`) {
			t.Errorf("stdout missing NAME line:\n%s", stdout.String())
		}
	})

	t.Run("yaml on stdin", func(t *testing.T) {
		deps, stdout, _ := testDeps(yamlInput)
		if err := run(context.Background(), testFlags(), deps); err != nil {
			t.Fatalf("run() unexpected error: %v", err)
		}
		if !strings.Contains(stdout.String(), `.SH "DESCRIPTION"`) {
			t.Errorf("stdout missing converted section:\n%s", stdout.String())
		}
	})
}

func TestRunVersion(t *testing.T) {
	flags := &cliFlags{common: commonFlags{version: true}}
	deps, stdout, _ := testDeps("")

	if err := run(context.Background(), flags, deps); err != nil {
		t.Fatalf("run() unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "md2roff "+Version) {
		t.Errorf("version output = %q", stdout.String())
	}
}

func TestRunMetaErrors(t *testing.T) {
	flags := testFlags()
	flags.meta.program = ""
	deps, _, _ := testDeps(markdownInput)

	err := run(context.Background(), flags, deps)
	if !errors.Is(err, md2roff.ErrInvalidMeta) {
		t.Errorf("run() error = %v, want ErrInvalidMeta", err)
	}
}

func TestRunMissingInputFile(t *testing.T) {
	flags := testFlags()
	flags.io.input = filepath.Join(t.TempDir(), "absent.md")
	deps, _, _ := testDeps("")

	err := run(context.Background(), flags, deps)
	if !errors.Is(err, ErrReadInput) {
		t.Fatalf("run() error = %v, want ErrReadInput", err)
	}
	if exitCodeFor(err) != ExitIO {
		t.Errorf("exitCodeFor() = %d, want %d", exitCodeFor(err), ExitIO)
	}
}

func TestRunMissingSchemaFile(t *testing.T) {
	flags := testFlags()
	flags.validation.schema = filepath.Join(t.TempDir(), "absent.yml")
	deps, _, _ := testDeps(yamlInput)

	if err := run(context.Background(), flags, deps); !errors.Is(err, ErrReadSchema) {
		t.Errorf("run() error = %v, want ErrReadSchema", err)
	}
}

func TestRunConversionErrorExitCode(t *testing.T) {
	flags := testFlags()
	deps, _, _ := testDeps("# no separator heading\n")

	err := run(context.Background(), flags, deps)
	if !errors.Is(err, md2roff.ErrMissingName) {
		t.Fatalf("run() error = %v, want ErrMissingName", err)
	}
	if exitCodeFor(err) != ExitUsage {
		t.Errorf("exitCodeFor() = %d, want %d", exitCodeFor(err), ExitUsage)
	}
}

func TestRunVerboseOutput(t *testing.T) {
	t.Run("verbose reports input", func(t *testing.T) {
		flags := testFlags()
		flags.common.verbose = true
		deps, _, stderr := testDeps(markdownInput)

		if err := run(context.Background(), flags, deps); err != nil {
			t.Fatalf("run() unexpected error: %v", err)
		}
		if !strings.Contains(stderr.String(), "input:") {
			t.Errorf("stderr missing verbose line: %q", stderr.String())
		}
	})

	t.Run("quiet wins over verbose", func(t *testing.T) {
		flags := testFlags()
		flags.common.verbose = true
		flags.common.quiet = true
		deps, _, stderr := testDeps(markdownInput)

		if err := run(context.Background(), flags, deps); err != nil {
			t.Fatalf("run() unexpected error: %v", err)
		}
		if stderr.Len() != 0 {
			t.Errorf("stderr should be empty under --quiet, got %q", stderr.String())
		}
	})
}
