package openmod

import (
	"context"
	"errors"
	"fmt"
	"plugin"

	"github.com/MRtecno98/openmod/api"
)

// ErrRuntimeActivation marks failures the process cannot recover from:
// without a runtime there is nothing left to hand control to.
var ErrRuntimeActivation = errors.New("runtime activation failed")

// ModuleLoader opens one code module by name or install root path.
type ModuleLoader interface {
	Open(name string) (api.Module, error)
}

// registered holds modules compiled into the process image and
// published through RegisterModule, typically from an init function.
var registered = make(map[string]api.Module)

func RegisterModule(module api.Module) {
	registered[module.Name()] = module
}

// RegisteredModule is an in-process module exposing a fixed symbol
// table.
type RegisteredModule struct {
	ModuleName string
	Symbols    map[string]any
}

func (m *RegisteredModule) Name() string {
	return m.ModuleName
}

func (m *RegisteredModule) Lookup(symbol string) (any, error) {
	if sym, ok := m.Symbols[symbol]; ok {
		return sym, nil
	}

	return nil, fmt.Errorf("symbol %s not found in module %s", symbol, m.ModuleName)
}

// HostLoader resolves registered modules first and falls back to
// opening shared objects from the install root. Shared objects need an
// OS backed context filesystem, the loader cannot dlopen out of a
// virtual one.
type HostLoader struct {
	Context *OpenContext
}

func NewHostLoader(oc *OpenContext) *HostLoader {
	return &HostLoader{Context: oc}
}

func (l *HostLoader) Open(name string) (api.Module, error) {
	if mod, ok := registered[name]; ok {
		return mod, nil
	}

	handle, err := plugin.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not load file or module '%s': %w", name, err)
	}

	return &sharedObjectModule{name: name, handle: handle}, nil
}

type sharedObjectModule struct {
	name   string
	handle *plugin.Plugin
}

func (m *sharedObjectModule) Name() string {
	return m.name
}

func (m *sharedObjectModule) Lookup(symbol string) (any, error) {
	sym, err := m.handle.Lookup(symbol)
	if err != nil {
		return nil, err
	}

	return sym, nil
}

func FindModule(modules []api.Module, name string) (api.Module, bool) {
	for _, m := range modules {
		if m.Name() == name {
			return m, true
		}
	}

	return nil, false
}

// ActivateRuntime locates the runtime module in the accumulated host
// module set, resolves its factory symbol and hands control over. The
// bootstrapper holds no compile time reference to the runtime, the
// api contract is all the two sides share.
func ActivateRuntime(ctx context.Context, modules []api.Module,
	params *api.HostParameters) (api.Runtime, error) {
	mod, ok := FindModule(modules, api.RuntimeModuleName)
	if !ok {
		return nil, fmt.Errorf("%w: module %s not present in host set",
			ErrRuntimeActivation, api.RuntimeModuleName)
	}

	sym, err := mod.Lookup(api.RuntimeFactorySymbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuntimeActivation, err)
	}

	var factory api.RuntimeFactory
	switch f := sym.(type) {
	case api.RuntimeFactory:
		factory = f
	case func() api.Runtime:
		factory = f
	default:
		return nil, fmt.Errorf("%w: symbol %s has unexpected type %T",
			ErrRuntimeActivation, api.RuntimeFactorySymbol, sym)
	}

	runtime := factory()
	if runtime == nil {
		return nil, fmt.Errorf("%w: factory returned no runtime", ErrRuntimeActivation)
	}

	if err := runtime.Init(ctx, modules, params); err != nil {
		return nil, fmt.Errorf("%w: runtime initialization: %v", ErrRuntimeActivation, err)
	}

	return runtime, nil
}
