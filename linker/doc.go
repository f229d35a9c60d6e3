// Package linker resolves a module's imports against the host namespaces.
//
// Resolve produces a LinkSet holding one Binding per distinct import. A
// binding's Source is either a HostFunc from a recognized namespace or, for
// imports from namespaces the host does not provide, a TrapFunc that fails
// the guest call if it is ever reached. The Policy in Options selects
// whether such imports are tolerated (PolicyPermissive, the default) or
// rejected during resolution (PolicyStrict).
//
// Signatures of bound imports are compared against the host callables and
// mismatches are recorded on the binding; the engine performs the
// authoritative check when it instantiates the module.
package linker
