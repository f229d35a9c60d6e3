package linker

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-host/errors"
	"github.com/wippyai/wasm-host/registry"
	"github.com/wippyai/wasm-host/wasm"
)

// Resolve walks m's imports in declaration order and binds each one.
//
// Imports naming a registry namespace are looked up there; imports naming
// extra's namespace are bound to its functions. A recognized namespace
// lacking the symbol fails with an unresolved import error. Imports from
// any other namespace are left to trap stubs under PolicyPermissive and
// fail under PolicyStrict.
func Resolve(m *wasm.Module, reg *registry.Registry, extra *registry.HostModule, opts Options) (*LinkSet, error) {
	if opts.Policy == "" {
		opts.Policy = PolicyPermissive
	}

	ls := newLinkSet(len(m.Imports))
	for _, imp := range m.Imports {
		if b, ok := ls.Lookup(imp.Module, imp.Name); ok {
			ls.add(b)
			continue
		}

		host := namespaceOf(imp.Module, reg, extra)
		if host == nil {
			if opts.Policy == PolicyStrict {
				return nil, errors.New(errors.PhaseLinking, errors.KindUnresolvedImport).
					Path(imp.Module, imp.Name).
					Detail("namespace %q is not provided by the host", imp.Module).
					Build()
			}
			Logger().Warn("ignoring import from unknown namespace",
				zap.String("namespace", imp.Module),
				zap.String("symbol", imp.Name),
				zap.Stringer("kind", imp.Kind))
			ls.add(ignored(m, imp))
			continue
		}

		b, err := bind(m, imp, host)
		if err != nil {
			return nil, err
		}
		ls.add(b)
	}
	return ls, nil
}

func namespaceOf(name string, reg *registry.Registry, extra *registry.HostModule) *registry.HostModule {
	if reg != nil {
		if h, ok := reg.Namespace(name); ok {
			return h
		}
	}
	if extra != nil && extra.Name() == name {
		return extra
	}
	return nil
}

func bind(m *wasm.Module, imp wasm.Import, host *registry.HostModule) (Binding, error) {
	c, ok := host.Lookup(imp.Name)
	if !ok || imp.Kind != wasm.KindFunc {
		return Binding{}, errors.UnresolvedImport(imp.Module, imp.Name)
	}

	declared, _ := m.ImportType(imp)
	b := Binding{
		Import:            imp,
		Declared:          declared,
		Source:            HostFunc{Callable: c, Tag: host.Tag()},
		SignatureMismatch: !declared.Equal(c.Type()),
	}

	switch host.Tag() {
	case registry.TagPreview1, registry.TagUnstable:
		if diff := registry.LegacyDifference(imp.Name); diff != "" && host.Tag() == registry.TagUnstable {
			Logger().Warn("legacy import served with preview1 layout",
				zap.String("import", b.Path()),
				zap.String("difference", diff))
		}
		if b.SignatureMismatch {
			Logger().Warn("system interface import declared with a different signature",
				zap.String("import", b.Path()),
				zap.Stringer("declared", declared),
				zap.Stringer("host", c.Type()))
		}
	case registry.TagCustom:
		if b.SignatureMismatch {
			Logger().Warn("custom import bound despite signature mismatch",
				zap.String("import", b.Path()),
				zap.Stringer("declared", declared),
				zap.Stringer("host", c.Type()))
		}
	}

	Logger().Debug("import resolved",
		zap.String("import", b.Path()),
		zap.Stringer("namespace", host.Tag()))
	return b, nil
}

func ignored(m *wasm.Module, imp wasm.Import) Binding {
	declared, _ := m.ImportType(imp)
	return Binding{
		Import:   imp,
		Declared: declared,
		Source: TrapFunc{
			Name:   imp.Module + "#" + imp.Name,
			Reason: "namespace not provided by the host",
		},
	}
}
