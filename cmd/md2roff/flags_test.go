package main

import (
	"io"
	"testing"
)

func TestParseFlagsDefaults(t *testing.T) {
	flags, args, err := parseFlags(nil, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags() unexpected error: %v", err)
	}
	if flags.io.input != "-" {
		t.Errorf("input default = %q, want %q", flags.io.input, "-")
	}
	if flags.io.output != "" {
		t.Errorf("output default = %q, want empty", flags.io.output)
	}
	if flags.meta.section != "1" {
		t.Errorf("section default = %q, want %q", flags.meta.section, "1")
	}
	if flags.validation.validate {
		t.Error("validation must default to off")
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestParseFlagsAll(t *testing.T) {
	flags, args, err := parseFlags([]string{
		"-i", "in.md",
		"-o", "out.roff",
		"-p", "mytool",
		"-s", "8",
		"-t", "Mytool Manual",
		"-m", "System Administration",
		"--source", "mytool 2.0",
		"--validate",
		"--schema", "custom.yml",
		"-q",
		"-v",
		"extra",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags() unexpected error: %v", err)
	}

	if flags.io.input != "in.md" || flags.io.output != "out.roff" {
		t.Errorf("io flags = %+v", flags.io)
	}
	if flags.meta.program != "mytool" || flags.meta.section != "8" ||
		flags.meta.title != "Mytool Manual" ||
		flags.meta.manualSection != "System Administration" ||
		flags.meta.source != "mytool 2.0" {
		t.Errorf("meta flags = %+v", flags.meta)
	}
	if !flags.validation.validate || flags.validation.schema != "custom.yml" {
		t.Errorf("validation flags = %+v", flags.validation)
	}
	if !flags.common.quiet || !flags.common.verbose {
		t.Errorf("common flags = %+v", flags.common)
	}
	if len(args) != 1 || args[0] != "extra" {
		t.Errorf("args = %v, want [extra]", args)
	}
}

func TestParseFlagsUnknown(t *testing.T) {
	if _, _, err := parseFlags([]string{"--nope"}, io.Discard); err == nil {
		t.Error("parseFlags() expected error for unknown flag")
	}
}
