// Package api is the contract shared between the bootstrapper and the
// runtime module it loads. The bootstrapper cannot compile against the
// runtime itself, so both sides agree on this package ahead of time and
// the runtime is reached through a well-known factory symbol instead of
// a build-time reference.
package api

import "context"

// RuntimeModuleName is the module the bootstrapper expects to find in
// the host package set once the core packages are loaded.
const RuntimeModuleName = "openmod.runtime"

// RuntimeFactorySymbol is the exported entry point of the runtime
// module, with the RuntimeFactory signature.
const RuntimeFactorySymbol = "NewRuntime"

type RuntimeFactory func() Runtime

// HostParameters carries the host context across the activation
// boundary.
type HostParameters struct {
	WorkingDirectory string
	CommandLineArgs  []string
	PackageManager   PackageManager
}

// Runtime is the host application proper. After Init returns the
// runtime manages itself and the bootstrapper performs no further
// calls on it.
type Runtime interface {
	Init(ctx context.Context, modules []Module, params *HostParameters) error
}
