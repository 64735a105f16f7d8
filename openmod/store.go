package openmod

import (
	"context"
	"errors"
	"log"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MRtecno98/openmod/api"
)

const DefaultRemediationTimeout = 30 * time.Second

// RegistryEntry is a non owning reference to a loaded unit. The store
// never extends a unit's lifetime: entries carry an explicit liveness
// flag set by whoever owns the unit's teardown, plus a generation
// number so stale handles can be told apart from reused slots.
type RegistryEntry struct {
	Unit       LoadUnit
	Generation uint64

	alive atomic.Bool
}

func (e *RegistryEntry) Alive() bool {
	return e.alive.Load()
}

// AssemblyStore validates candidate load units, remediates their
// missing dependencies and keeps the registry of currently loaded
// units.
type AssemblyStore struct {
	Context *OpenContext

	AutoRemediate       bool
	IgnoredDependencies []string
	RemediationTimeout  time.Duration

	mu         sync.Mutex
	generation uint64
	registry   *SymmetricBiMap[string, *RegistryEntry]
}

func NewAssemblyStore(oc *OpenContext) *AssemblyStore {
	store := &AssemblyStore{
		Context:            oc,
		RemediationTimeout: DefaultRemediationTimeout,
		registry: NewSymmetricBiMap(func(e *RegistryEntry) (string, string) {
			return e.Unit.GetIdentifier(), e.Unit.GetName()
		}),
	}

	if oc != nil && oc.LocalConfig != nil {
		store.AutoRemediate = oc.LocalConfig.AutoRemediate
		store.IgnoredDependencies = oc.LocalConfig.IgnoredDependencies
	}

	return store
}

// LoadAll validates every candidate unit the source yields and returns
// the accepted batch. Per unit failures never abort the pass: bad
// units are dropped from the source, logged and skipped.
func (s *AssemblyStore) LoadAll(ctx context.Context, source UnitSource) []LoadUnit {
	units, err := source.Units(ctx)
	if err != nil {
		log.Printf("warn: unit source failed: %v\n", err)
		return nil
	}

	// Dependencies already remediated this pass, so two units missing
	// the same library trigger a single install.
	remediated := make(map[string]bool)

	accepted := make([]LoadUnit, 0, len(units))
	for _, unit := range units {
		if unit.Descriptor() == nil {
			log.Printf("warn: unit %s has no descriptor, skipping\n", unit.GetName())
			source.Drop(unit)
			continue
		}

		if _, err := unit.Members(); err != nil {
			source.Drop(unit)

			var fault *LoadFault
			if errors.As(err, &fault) {
				s.handleFault(ctx, unit, fault, remediated)
			} else {
				log.Printf("warn: unit %s failed to resolve: %v\n", unit.GetName(), err)
			}

			continue
		}

		if pl, err := unit.Instantiate(); err != nil || pl == nil {
			log.Printf("warn: unit %s does not implement the plugin capability, skipping\n",
				unit.GetName())
			source.Drop(unit)
			continue
		}

		if !s.register(unit) {
			source.Drop(unit)
			continue
		}

		accepted = append(accepted, unit)
	}

	return accepted
}

func (s *AssemblyStore) handleFault(ctx context.Context, unit LoadUnit,
	fault *LoadFault, remediated map[string]bool) {
	missing := ExtractMissingDependencies(fault.Inner)
	for name := range missing {
		if slices.Contains(s.IgnoredDependencies, name) {
			delete(missing, name)
		}
	}

	if len(missing) == 0 {
		log.Printf("warn: unit %s failed to load with no recoverable dependency, skipping\n",
			unit.GetName())
		return
	}

	if !s.AutoRemediate {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}

		sort.Strings(names)
		log.Printf("warn: unit %s is missing dependencies %v and automatic install is disabled\n",
			unit.GetName(), names)
		return
	}

	// Whatever happens here the unit stays out of this pass, installed
	// dependencies only take effect on the next reload.
	s.remediate(ctx, unit, missing, remediated)
}

// remediate installs the missing dependencies of one unit, stopping at
// the first failure. Every unit gets its own bounded timeout so one
// stalled install cannot block the rest of the batch.
func (s *AssemblyStore) remediate(ctx context.Context, unit LoadUnit,
	missing map[string]api.SemanticVersion, remediated map[string]bool) {
	rctx, cancel := context.WithTimeout(ctx, s.RemediationTimeout)
	defer cancel()

	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if remediated[name] {
			continue
		}

		version := missing[name]

		info, err := s.Context.QueryExact(rctx, name, &version, false)
		if err != nil {
			log.Printf("warn: dependency %s@%s of %s not found: %v\n",
				name, version, unit.GetName(), err)
			return
		}

		if res := s.Context.Install(rctx, info); !res.Ok() {
			log.Printf("warn: failed to install dependency %s of %s: %v\n",
				name, unit.GetName(), res.Reason)
			return
		}

		remediated[name] = true
		log.Printf("installed missing dependency %s for %s\n",
			info.Coordinate(), unit.GetName())
	}
}

func (s *AssemblyStore) register(unit LoadUnit) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.registry.GetAny(unit.GetIdentifier()); ok && old.Alive() {
		log.Printf("warn: unit %s already registered, skipping\n", unit.GetIdentifier())
		return false
	}

	s.generation++

	entry := &RegistryEntry{Unit: unit, Generation: s.generation}
	entry.alive.Store(true)

	s.registry.Put(entry)

	return true
}

// LoadedUnits returns a snapshot of the currently alive registry
// entries.
func (s *AssemblyStore) LoadedUnits() []LoadUnit {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.registry.Values()

	units := make([]LoadUnit, 0, len(entries))
	for _, e := range entries {
		if e.Alive() {
			units = append(units, e.Unit)
		}
	}

	return units
}

// Release marks a unit dead and removes it from the registry. It is
// called by the code responsible for the unit's teardown, the store
// itself never drops a live unit.
func (s *AssemblyStore) Release(identifier string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.registry.GetAny(identifier); ok {
		entry.alive.Store(false)
		s.registry.Delete(identifier)
	}
}
