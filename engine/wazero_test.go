package engine

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-host/calculator"
	"github.com/wippyai/wasm-host/linker"
	"github.com/wippyai/wasm-host/registry"
	"github.com/wippyai/wasm-host/wasm"
	"github.com/wippyai/wasm-host/wat"
)

type harness struct {
	engine *WazeroEngine
	reg    *registry.Registry
	calc   *registry.HostModule
	stdout *bytes.Buffer
}

func newHarness(t *testing.T, cfg *Config) *harness {
	t.Helper()
	ctx := context.Background()

	e, err := NewWazeroEngineWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("NewWazeroEngineWithConfig: %v", err)
	}
	t.Cleanup(func() { e.Close(ctx) })

	stdout := &bytes.Buffer{}
	reg, err := registry.New(ctx, e.Runtime(), registry.Stdio{
		Stdin:  strings.NewReader(""),
		Stdout: stdout,
		Stderr: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	calc, err := calculator.New(ctx, e.Runtime())
	if err != nil {
		t.Fatalf("calculator.New: %v", err)
	}
	return &harness{engine: e, reg: reg, calc: calc, stdout: stdout}
}

func (h *harness) instantiate(t *testing.T, src string, policy linker.Policy) (*WazeroInstance, error) {
	t.Helper()
	ctx := context.Background()
	data := wat.MustCompile(src)

	desc, err := wasm.ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	ls, err := linker.Resolve(desc, h.reg, h.calc, linker.Options{Policy: policy})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	mod, err := h.engine.LoadModule(ctx, data, desc)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	stdio := h.reg.Stdio()
	inst, err := mod.Instantiate(ctx, ls, &InstanceConfig{Stdin: stdio.Stdin, Stdout: stdio.Stdout, Stderr: stdio.Stderr})
	if err == nil {
		t.Cleanup(func() { inst.Close(ctx) })
	}
	return inst, err
}

func TestNewWazeroEngineWithConfig(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		cfg  *Config
		name string
	}{
		{nil, "nil config"},
		{&Config{}, "default config"},
		{&Config{MemoryLimitPages: 256}, "16MB limit"},
		{&Config{CloseOnContextDone: true}, "context aware"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine, err := NewWazeroEngineWithConfig(ctx, tc.cfg)
			if err != nil {
				t.Fatalf("NewWazeroEngineWithConfig failed: %v", err)
			}
			defer engine.Close(ctx)

			if engine.Runtime() == nil {
				t.Error("engine runtime should not be nil")
			}
		})
	}
}

func TestCallCustomImport(t *testing.T) {
	h := newHarness(t, nil)

	src := `(module
		(import "calculator" "add" (func $add (param i32 i32) (result i32)))
		(func (export "consume_add") (param i32 i32) (result i32)
			(call $add (local.get 0) (local.get 1))))`

	inst, err := h.instantiate(t, src, linker.PolicyStrict)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	results, err := inst.Call(context.Background(), "consume_add", []uint64{3, 4})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(results) != 1 || api.DecodeI32(results[0]) != 7 {
		t.Errorf("results = %v, want [7]", results)
	}
}

func TestCallWASIWrite(t *testing.T) {
	for _, ns := range []string{registry.NamespacePreview1, registry.NamespaceUnstable} {
		t.Run(ns, func(t *testing.T) {
			h := newHarness(t, nil)

			src := `(module
				(import "` + ns + `" "fd_write" (func $fd_write (param i32 i32 i32 i32) (result i32)))
				(memory (export "memory") 1)
				(data (i32.const 0) "\08\00\00\00\03\00\00\00")
				(data (i32.const 8) "hi\0a")
				(func (export "hello") (result i32)
					(call $fd_write (i32.const 1) (i32.const 0) (i32.const 1) (i32.const 16))))`

			inst, err := h.instantiate(t, src, linker.PolicyStrict)
			if err != nil {
				t.Fatalf("Instantiate: %v", err)
			}
			results, err := inst.Call(context.Background(), "hello", nil)
			if err != nil {
				t.Fatalf("Call: %v", err)
			}
			if results[0] != 0 {
				t.Errorf("errno = %d", results[0])
			}
			if h.stdout.String() != "hi\n" {
				t.Errorf("stdout = %q", h.stdout.String())
			}
		})
	}
}

const exitWAT = `(module
	(import "wasi_snapshot_preview1" "proc_exit" (func $exit (param i32)))
	(memory (export "memory") 1)
	(func (export "quit") (param i32) (call $exit (local.get 0)))
	(func (export "boom") (unreachable)))`

func TestTrapClassification(t *testing.T) {
	ctx := context.Background()

	t.Run("unreachable", func(t *testing.T) {
		h := newHarness(t, nil)
		inst, err := h.instantiate(t, exitWAT, linker.PolicyStrict)
		if err != nil {
			t.Fatalf("Instantiate: %v", err)
		}
		_, err = inst.Call(ctx, "boom", nil)
		var trap *Trap
		if !stderrors.As(err, &trap) || trap.Export != "boom" {
			t.Errorf("expected trap from boom, got %v", err)
		}
	})

	for _, code := range []uint32{0, 3} {
		t.Run(fmt.Sprintf("exit %d", code), func(t *testing.T) {
			h := newHarness(t, nil)
			inst, err := h.instantiate(t, exitWAT, linker.PolicyStrict)
			if err != nil {
				t.Fatalf("Instantiate: %v", err)
			}
			_, err = inst.Call(ctx, "quit", []uint64{uint64(code)})
			var exitErr *Exit
			if !stderrors.As(err, &exitErr) {
				t.Fatalf("expected exit, got %v", err)
			}
			if exitErr.Code != code || exitErr.Success() != (code == 0) {
				t.Errorf("exit = %d success=%v, want %d", exitErr.Code, exitErr.Success(), code)
			}
		})
	}
}

func TestTrapStubs(t *testing.T) {
	h := newHarness(t, nil)

	src := `(module
		(import "env" "log" (func $log (param i64)))
		(func (export "answer") (result i32) (i32.const 42))
		(func (export "noisy") (call $log (i64.const 1))))`

	inst, err := h.instantiate(t, src, linker.PolicyPermissive)
	if err != nil {
		t.Fatalf("Instantiate with unknown namespace: %v", err)
	}
	ctx := context.Background()

	results, err := inst.Call(ctx, "answer", nil)
	if err != nil || api.DecodeI32(results[0]) != 42 {
		t.Fatalf("answer = %v, %v", results, err)
	}

	_, err = inst.Call(ctx, "noisy", nil)
	var trap *Trap
	if !stderrors.As(err, &trap) {
		t.Fatalf("expected trap, got %v", err)
	}
	if !strings.Contains(err.Error(), "unresolved import env#log called") {
		t.Errorf("trap message = %v", err)
	}
}

func TestInstantiateRejectsSignatureMismatch(t *testing.T) {
	h := newHarness(t, nil)

	src := `(module
		(import "calculator" "add" (func $add (param i64 i64) (result i64)))
		(func (export "consume_add") (result i64)
			(call $add (i64.const 1) (i64.const 2))))`

	if _, err := h.instantiate(t, src, linker.PolicyStrict); err == nil {
		t.Fatal("expected instantiation to reject mismatched calculator#add")
	}
}

func TestInstantiateStartFunctions(t *testing.T) {
	h := newHarness(t, nil)

	src := `(module
		(memory 1)
		(func (export "_initialize") (i32.store (i32.const 0) (i32.const 42)))
		(func (export "_start") (unreachable))
		(func (export "get") (result i32) (i32.load (i32.const 0))))`

	inst, err := h.instantiate(t, src, linker.PolicyStrict)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	results, err := inst.Call(context.Background(), "get", nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if api.DecodeI32(results[0]) != 42 {
		t.Errorf("_initialize did not run, got %d", api.DecodeI32(results[0]))
	}
}

func TestInstantiateRequiresCoveringLinkSet(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	data := wat.MustCompile(`(module (import "calculator" "add" (func (param i32 i32) (result i32))))`)
	desc, err := wasm.ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	mod, err := h.engine.LoadModule(ctx, data, desc)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if _, err := mod.Instantiate(ctx, nil, nil); err == nil {
		t.Error("expected nil link set to be rejected")
	}

	empty, err := linker.Resolve(&wasm.Module{}, h.reg, h.calc, linker.DefaultOptions())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := mod.Instantiate(ctx, empty, nil); err == nil {
		t.Error("expected link set of another module to be rejected")
	}
}

func TestMemoryLimit(t *testing.T) {
	h := newHarness(t, &Config{MemoryLimitPages: 1})
	ctx := context.Background()

	data := wat.MustCompile("(module (memory 2))")
	desc, err := wasm.ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	ls, err := linker.Resolve(desc, h.reg, h.calc, linker.DefaultOptions())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	mod, err := h.engine.LoadModule(ctx, data, desc)
	if err != nil {
		return
	}
	inst, err := mod.Instantiate(ctx, ls, nil)
	if err == nil {
		inst.Close(ctx)
		t.Error("expected memory above the limit to be rejected")
	}
}
