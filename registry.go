package pdata

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry is the directory of processors. It maps each trait to an ordered
// list of processors and dispatches get, offer and remove calls to the first
// processor that supports the holder. Registration order is dispatch order.
//
// A Registry is built once at bootstrap, usually through a Builder, and is
// passed explicitly to the code that needs it.
type Registry struct {
	mu sync.RWMutex

	// traits holds the registered traits in registration order
	traits []*Trait

	// processors maps a trait to its processors in registration order
	processors map[*Trait][]Processor

	// byName maps trait names to traits
	byName map[string]*Trait

	// byKey maps key IDs to the trait that owns the key
	byKey map[KeyID]*Trait
	// owned holds the IDs of every key in byKey
	owned KeySet

	// listeners for pre-change and post-change notifications
	offerListeners  map[KeyID][]func(*OfferEvent)
	allOffer        []func(*OfferEvent)
	changeListeners map[KeyID][]func(*ChangeEvent)
	allChange       []func(*ChangeEvent)
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		processors:      make(map[*Trait][]Processor),
		byName:          make(map[string]*Trait),
		byKey:           make(map[KeyID]*Trait),
		offerListeners:  make(map[KeyID][]func(*OfferEvent)),
		changeListeners: make(map[KeyID][]func(*ChangeEvent)),
	}
}

// Register appends a processor to its trait's processor list. It returns an
// error if another trait with the same name is registered or one of the
// trait's keys already belongs to a different trait.
func (r *Registry) Register(p Processor) error {
	t := p.Trait()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byName[t.Name()]; ok && existing != t {
		return fmt.Errorf("register %s: another trait has the same name", t.Name())
	}
	_, known := r.processors[t]
	if !known && r.owned.ContainsAny(t.KeySet()) {
		for _, k := range t.keys {
			if owner, ok := r.byKey[k.ID()]; ok {
				return fmt.Errorf("register %s: key %s already belongs to %s", t.Name(), k.Name(), owner.Name())
			}
		}
	}

	if !known {
		r.traits = append(r.traits, t)
		r.byName[t.Name()] = t
		for _, k := range t.keys {
			r.byKey[k.ID()] = t
		}
		r.owned = r.owned.Union(t.KeySet())
	}
	r.processors[t] = append(r.processors[t], p)
	return nil
}

// Traits returns the registered traits in registration order.
func (r *Registry) Traits() []*Trait {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Trait, len(r.traits))
	copy(out, r.traits)
	return out
}

// Trait returns the registered trait with the given name.
func (r *Registry) Trait(name string) (*Trait, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// TraitOf returns the registered trait that owns the key.
func (r *Registry) TraitOf(key AnyKey) (*Trait, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byKey[key.ID()]
	return t, ok
}

// Processors returns the processors of a trait in dispatch order.
func (r *Registry) Processors(t *Trait) []Processor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ps := r.processors[t]
	out := make([]Processor, len(ps))
	copy(out, ps)
	return out
}

// processorFor returns the first processor of t that supports h.
func (r *Registry) processorFor(h any, t *Trait) Processor {
	r.mu.RLock()
	ps := r.processors[t]
	r.mu.RUnlock()

	for _, p := range ps {
		if p.Supports(h) {
			return p
		}
	}
	return nil
}

// Supports reports whether any processor of t supports h.
func (r *Registry) Supports(h any, t *Trait) bool {
	return r.processorFor(h, t) != nil
}

// Get reads trait t from h.
func (r *Registry) Get(h any, t *Trait) (*Manipulator, bool) {
	p := r.processorFor(h, t)
	if p == nil {
		return nil, false
	}
	return p.From(h)
}

// GetAll reads every supported trait from h, in registration order.
func (r *Registry) GetAll(h any) []*Manipulator {
	var out []*Manipulator
	for _, t := range r.Traits() {
		if m, ok := r.Get(h, t); ok {
			out = append(out, m)
		}
	}
	return out
}

// Offer merges m with the current values of h using fn and applies the
// result. Pre-change listeners see the merged values and may cancel the
// offer, in which case nothing is written and a Cancelled result is
// returned. Offers that change nothing do not reach the listeners.
func (r *Registry) Offer(h any, m *Manipulator, fn MergeFunction) TransactionResult {
	if m == nil {
		return FailNoData()
	}
	p := r.processorFor(h, m.Trait())
	if p == nil {
		return FailResult(m.Values()...)
	}

	original, _ := p.From(h)
	merged := merge(fn, original, m)
	if merged == nil {
		return FailResult(m.Values()...)
	}
	if r.fireOffer(h, original, merged) {
		return CancelledResult(merged.Values()...)
	}

	res := p.Set(h, merged, KeepReplacement)
	if res.IsSuccessful() {
		r.fireChange(h, m.Trait(), res)
	}
	return res
}

// OfferAll applies every manipulator and composes the results.
func (r *Registry) OfferAll(h any, ms []*Manipulator, fn MergeFunction) TransactionResult {
	b := NewResult()
	for _, m := range ms {
		b.Absorb(r.Offer(h, m, fn))
	}
	res, err := b.Build()
	if err != nil {
		slog.Error("pdata: composing offer results", "error", err)
		return ErrorResult()
	}
	return res
}

// Remove reverts trait t on h to absent.
func (r *Registry) Remove(h any, t *Trait) TransactionResult {
	p := r.processorFor(h, t)
	if p == nil {
		return FailNoData()
	}
	res := p.RemoveFrom(h)
	if res.IsSuccessful() {
		r.fireChange(h, t, res)
	}
	return res
}

// Snapshot encodes every supported trait of h into a container, one nested
// container per trait name. Traits whose values have no codec are skipped.
func (r *Registry) Snapshot(h any) Container {
	c := NewContainer()
	for _, m := range r.GetAll(h) {
		sub, err := m.Container()
		if err != nil {
			slog.Debug("pdata: trait not persisted", "trait", m.Trait().Name(), "error", err)
			continue
		}
		c[m.Trait().Name()] = sub
	}
	return c
}

// Fill decodes the traits found in c, in registration order.
func (r *Registry) Fill(c Container) []*Manipulator {
	var out []*Manipulator
	for _, t := range r.Traits() {
		view, ok := c.View(t.Name())
		if !ok {
			continue
		}
		ps := r.Processors(t)
		if len(ps) == 0 {
			continue
		}
		if m, ok := ps[0].Fill(view, nil); ok {
			out = append(out, m)
		}
	}
	return out
}

// Restore decodes c and offers the decoded traits to h.
func (r *Registry) Restore(h any, c Container, fn MergeFunction) TransactionResult {
	return r.OfferAll(h, r.Fill(c), fn)
}

// GetValue reads a single value from h.
func GetValue[T any](r *Registry, h any, key Key[T]) (T, bool) {
	var zero T
	t, ok := r.TraitOf(key)
	if !ok {
		return zero, false
	}
	m, ok := r.Get(h, t)
	if !ok {
		return zero, false
	}
	return Get(m, key)
}

// OfferValue sets a single value on h, keeping the trait's other values.
func OfferValue[T any](r *Registry, h any, key Key[T], v T) TransactionResult {
	t, ok := r.TraitOf(key)
	if !ok {
		return FailNoData()
	}
	p := r.processorFor(h, t)
	if p == nil {
		return FailResult(ImmutableOf(key, v, v))
	}
	current, ok := p.From(h)
	if !ok {
		current = t.New()
	}
	m, err := With(current, key, v)
	if err != nil {
		return FailResult(ImmutableOf(key, v, v))
	}
	return r.Offer(h, m, KeepReplacement)
}
