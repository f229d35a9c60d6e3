package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/wasm-host/wat"
)

const addWAT = `(module
	(import "calculator" "add" (func $add (param i32 i32) (result i32)))
	(memory (export "memory") 1)
	(func (export "consume_add") (param i32 i32) (result i32)
		(call $add (local.get 0) (local.get 1)))
	(func (export "add") (param i32 i32) (result i32)
		(i32.add (local.get 0) (local.get 1)))
	(func (export "boom") (unreachable)))`

// writeModule writes the compiled binary of addWAT.
func writeModule(t *testing.T) string {
	t.Helper()
	return writeFile(t, "add.wasm", wat.MustCompile(addWAT))
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(""), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunSuccess(t *testing.T) {
	path := writeModule(t)
	text := writeFile(t, "add.wat", []byte(addWAT))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"custom import", []string{path, "consume_add", "3", "4"}, "7\n"},
		{"local add", []string{path, "add", "3", "4"}, "7\n"},
		{"negative argument", []string{path, "add", "-3", "4"}, "1\n"},
		{"flag looking argument", []string{path, "add", "-10", "-20"}, "-30\n"},
		{"strict policy", []string{"--policy", "strict", path, "consume_add", "3", "4"}, "7\n"},
		{"limits", []string{"--timeout", "5s", "--memory-limit-pages", "16", path, "consume_add", "1", "1"}, "2\n"},
		{"text format", []string{text, "consume_add", "3", "4"}, "7\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(tt.args...)
			if code != exitOK {
				t.Fatalf("exit = %d, stderr = %s", code, stderr)
			}
			if stdout != tt.want {
				t.Errorf("stdout = %q, want %q", stdout, tt.want)
			}
			if stderr != "" {
				t.Errorf("stderr = %q", stderr)
			}
		})
	}
}

func TestRunUsageErrors(t *testing.T) {
	path := writeModule(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"module only", []string{path}},
		{"unknown flag", []string{"--nope", path, "add"}},
		{"bad policy", []string{"--policy", "lenient", path, "add", "1", "2"}},
		{"bad duration", []string{"--timeout", "soon", path, "add", "1", "2"}},
		{"list with export", []string{"--list", path, "add"}},
		{"list and interactive", []string{"-l", "-i", path}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(tt.args...)
			if code != exitFailure {
				t.Fatalf("exit = %d, want %d (stderr %q)", code, exitFailure, stderr)
			}
			if stdout != "" {
				t.Errorf("stdout = %q", stdout)
			}
			if !strings.Contains(stderr, "Usage: host") {
				t.Errorf("stderr lacks usage line: %q", stderr)
			}
		})
	}
}

func TestRunFailures(t *testing.T) {
	path := writeModule(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing file", []string{filepath.Join(t.TempDir(), "none.wasm"), "add"}, "not_found"},
		{"missing export", []string{path, "sub", "1", "2"}, "export_not_found"},
		{"not callable", []string{path, "memory"}, "not_callable"},
		{"arity", []string{path, "add", "1"}, "expected 2 argument(s), got 1"},
		{"bad argument", []string{path, "add", "1", "1.5"}, "argument"},
		{"trap", []string{path, "boom"}, "guest_trap"},
		{"text syntax", []string{writeFile(t, "bad.wat", []byte("(module (func (bogus)))")), "add"}, "parse text module"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(tt.args...)
			if code != exitFailure {
				t.Fatalf("exit = %d, want %d (stderr %q)", code, exitFailure, stderr)
			}
			if stdout != "" {
				t.Errorf("stdout = %q", stdout)
			}
			if !strings.HasPrefix(stderr, "Error: ") || !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("stderr = %q, want it to mention %q", stderr, tt.wantErr)
			}
			if strings.Contains(stderr, "Usage:") {
				t.Errorf("runtime failure printed usage: %q", stderr)
			}
		})
	}
}

func TestRunList(t *testing.T) {
	path := writeModule(t)

	code, stdout, stderr := runCLI("--list", path)
	if code != exitOK {
		t.Fatalf("exit = %d, stderr = %s", code, stderr)
	}
	want := "memory: memory\n" +
		"consume_add(i32, i32) -> (i32)\n" +
		"add(i32, i32) -> (i32)\n" +
		"boom() -> ()\n"
	if stdout != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout, want)
	}
}

func TestRunVerbose(t *testing.T) {
	path := writeModule(t)

	code, stdout, stderr := runCLI("-v", path, "consume_add", "3", "4")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr = %s", code, stderr)
	}
	if stdout != "7\n" {
		t.Errorf("stdout = %q, logs must not reach stdout", stdout)
	}
	if !strings.Contains(stderr, "invoke transition") {
		t.Errorf("stderr lacks debug logs: %q", stderr)
	}
}

func TestRunInteractiveNeedsTerminal(t *testing.T) {
	path := writeModule(t)

	code, _, stderr := runCLI("-i", path)
	if code != exitFailure || !strings.Contains(stderr, "requires a terminal") {
		t.Skipf("stdin is a terminal (exit %d): %s", code, stderr)
	}
}

func TestExitError(t *testing.T) {
	err := usageError("bad %s", "input")
	if err.Error() != "bad input" {
		t.Errorf("Error() = %q", err.Error())
	}
	var exitErr *ExitError
	if !stderrors.As(err, &exitErr) || exitErr.Code != exitFailure || !exitErr.Usage {
		t.Errorf("usage error = %+v, want status %d marked as usage", exitErr, exitFailure)
	}
	if (&ExitError{Code: 3}).Error() != "exit status 3" {
		t.Error("empty ExitError should report its code")
	}
}
