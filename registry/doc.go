// Package registry holds the host namespaces available to guest modules.
//
// A Registry is built once per run and contains the two system interface
// generations, wasi_snapshot_preview1 and wasi_unstable. Both are served by
// the same preview1 implementation but are instantiated as distinct host
// modules, so a symbol is only ever found in the namespace it was imported
// from:
//
//	reg, err := registry.New(ctx, rt, stdio)
//	if err != nil {
//	    return err
//	}
//	fdWrite, ok := reg.Lookup("wasi_unstable", "fd_write")
//
// wasi_unstable is the preview1 function set exported under the legacy
// name, not a separate implementation. Signatures match, but a few calls
// read or write memory differently in the legacy ABI: fd_seek numbers its
// whence values in another order, fd_filestat_get and path_filestat_get
// use a shorter filestat record, and poll_oneoff expects an extra field in
// clock subscriptions. LegacyDifference reports these per symbol and the
// linker warns when a guest imports one of them from wasi_unstable. Guests
// that only print, read arguments and exit are unaffected.
//
// Fixed host namespaces defined by the program itself, such as the
// calculator, are created with DefineCustom and carry TagCustom.
package registry
