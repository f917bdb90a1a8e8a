package hydrive

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/hydrive/core"
	"github.com/poiesic/hydrive/search"
)

// ErrUnknownVehicle is returned when no engine is registered for a vehicle.
var ErrUnknownVehicle = errors.New("unknown vehicle")

// Registry maps vehicles to the engine serving their manual.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*search.Engine
}

func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]*search.Engine)}
}

// RegistryKey is the key a document is registered under: its canonical
// vehicle name, or its ID when the vehicle is unknown.
func RegistryKey(doc *core.Document) string {
	if doc.Vehicle != "" && doc.Vehicle != core.VehicleUnknown {
		return string(doc.Vehicle)
	}
	return doc.ID
}

// resolve accepts a client code ("SANTAFE"), a canonical name ("싼타페")
// or a raw key.
func resolve(vehicle string) string {
	if v, ok := core.VehicleByCode(vehicle); ok {
		return string(v)
	}
	return strings.TrimSpace(vehicle)
}

// Register installs engine under vehicle and returns the engine it replaced, if any.
func (r *Registry) Register(vehicle string, engine *search.Engine) *search.Engine {
	key := resolve(vehicle)
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.engines[key]
	r.engines[key] = engine
	return prev
}

func (r *Registry) Get(vehicle string) (*search.Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	engine, ok := r.engines[resolve(vehicle)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVehicle, vehicle)
	}
	return engine, nil
}

// Vehicles returns the registered keys in sorted order.
func (r *Registry) Vehicles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.engines))
	for k := range r.engines {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Remove unregisters a vehicle and returns its engine. The caller owns the
// returned engine and is responsible for closing it.
func (r *Registry) Remove(vehicle string) (*search.Engine, bool) {
	key := resolve(vehicle)
	r.mu.Lock()
	defer r.mu.Unlock()
	engine, ok := r.engines[key]
	delete(r.engines, key)
	return engine, ok
}

// Search runs query against the manual registered for vehicle.
func (r *Registry) Search(ctx context.Context, vehicle, query string, k int) ([]*core.SearchResult, error) {
	engine, err := r.Get(vehicle)
	if err != nil {
		return nil, err
	}
	return engine.Search(ctx, query, k)
}

// Close closes and unregisters every engine.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, engine := range r.engines {
		engine.Close()
		delete(r.engines, k)
	}
}
