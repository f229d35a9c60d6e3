// Package runtime runs a single export of a core module against the host's
// namespaces.
//
//	cfg := runtime.DefaultConfig()
//	results, err := runtime.Run(ctx, cfg, "add.wasm", "consume_add", []string{"3", "4"})
//
// Run is a convenience over the lower-level lifecycle:
//
//	rt, err := runtime.New(ctx, cfg)    // engine, WASI namespaces, calculator
//	mod, err := rt.Load(ctx, src)       // binary or text format, decode and compile
//	inst, err := mod.Instantiate(ctx)   // link under cfg.Policy, instantiate
//	results, err := inst.Invoke(ctx, "consume_add", args, os.Stdout)
//
// A Runtime hosts each namespace once, so build one Runtime per process or
// per test.
package runtime
