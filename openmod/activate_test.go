package openmod

import (
	"context"
	"fmt"
	"testing"

	"github.com/MRtecno98/openmod/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivateRuntime(t *testing.T) {
	rt := &fakeRuntime{}

	modules := []api.Module{
		&RegisteredModule{ModuleName: "openmod.base"},
		runtimeModule(rt),
	}

	runtime, err := ActivateRuntime(context.Background(), modules, &api.HostParameters{})
	require.NoError(t, err)

	assert.Same(t, rt, runtime)
	assert.True(t, rt.initialized)
	assert.Len(t, rt.modules, 2)
}

func TestActivateRuntimeUnnamedFactory(t *testing.T) {
	rt := &fakeRuntime{}

	// Shared objects expose the plain function type, not the named one
	modules := []api.Module{
		&RegisteredModule{
			ModuleName: api.RuntimeModuleName,
			Symbols: map[string]any{
				api.RuntimeFactorySymbol: func() api.Runtime { return rt },
			},
		},
	}

	runtime, err := ActivateRuntime(context.Background(), modules, &api.HostParameters{})
	require.NoError(t, err)
	assert.Same(t, rt, runtime)
}

func TestActivateRuntimeFailures(t *testing.T) {
	tests := []struct {
		name    string
		modules []api.Module
	}{
		{
			name:    "no_runtime_module",
			modules: []api.Module{&RegisteredModule{ModuleName: "openmod.base"}},
		},
		{
			name: "missing_factory_symbol",
			modules: []api.Module{
				&RegisteredModule{ModuleName: api.RuntimeModuleName},
			},
		},
		{
			name: "wrong_symbol_type",
			modules: []api.Module{
				&RegisteredModule{
					ModuleName: api.RuntimeModuleName,
					Symbols:    map[string]any{api.RuntimeFactorySymbol: 42},
				},
			},
		},
		{
			name: "nil_runtime",
			modules: []api.Module{
				&RegisteredModule{
					ModuleName: api.RuntimeModuleName,
					Symbols: map[string]any{
						api.RuntimeFactorySymbol: func() api.Runtime { return nil },
					},
				},
			},
		},
		{
			name: "init_failure",
			modules: []api.Module{
				runtimeModule(&fakeRuntime{initErr: fmt.Errorf("bad state")}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ActivateRuntime(context.Background(), tt.modules, &api.HostParameters{})

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRuntimeActivation)
		})
	}
}

func TestFindModule(t *testing.T) {
	modules := []api.Module{
		&RegisteredModule{ModuleName: "one"},
		&RegisteredModule{ModuleName: "two"},
	}

	mod, ok := FindModule(modules, "two")
	require.True(t, ok)
	assert.Equal(t, "two", mod.Name())

	_, ok = FindModule(modules, "three")
	assert.False(t, ok)
}

func TestRegisteredModuleLookup(t *testing.T) {
	mod := &RegisteredModule{
		ModuleName: "demo",
		Symbols:    map[string]any{"Handler": "value"},
	}

	sym, err := mod.Lookup("Handler")
	require.NoError(t, err)
	assert.Equal(t, "value", sym)

	_, err = mod.Lookup("Missing")
	assert.Error(t, err)
}

func TestHostLoaderRegisteredModules(t *testing.T) {
	mod := &RegisteredModule{ModuleName: "openmod.hosttest"}
	RegisterModule(mod)

	loader := NewHostLoader(nil)

	got, err := loader.Open("openmod.hosttest")
	require.NoError(t, err)
	assert.Same(t, mod, got)
}

func TestHostLoaderMissingModule(t *testing.T) {
	loader := NewHostLoader(nil)

	_, err := loader.Open("no/such/module.so")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not load file or module")
}
