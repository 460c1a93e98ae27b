package pdata

import "slices"

// OfferEvent is passed to pre-change listeners before values are written to
// a holder, either through Registry.Offer or because the host is about to
// change a native field (see Handler).
type OfferEvent struct {
	// Holder is the object whose trait is about to change.
	Holder any
	// Original holds the current values, or nil if the trait is absent.
	Original *Manipulator
	// Proposed holds the values about to be applied. It is immutable.
	Proposed *Manipulator

	cancelled bool
}

// Trait returns the trait being changed.
func (e *OfferEvent) Trait() *Trait { return e.Proposed.Trait() }

// Cancel vetoes the change.
func (e *OfferEvent) Cancel() { e.cancelled = true }

// Cancelled returns true if a listener vetoed the change.
func (e *OfferEvent) Cancelled() bool { return e.cancelled }

// ChangeEvent is passed to post-change listeners after a trait was changed
// successfully through the registry.
type ChangeEvent struct {
	// Holder is the object whose trait changed.
	Holder any
	// Trait is the trait that changed.
	Trait *Trait
	// Result describes the applied and replaced values.
	Result TransactionResult
}

// OnOffer registers a pre-change listener for changes touching key. A nil key
// listens to every change. Listeners run synchronously in registration order.
func (r *Registry) OnOffer(key AnyKey, fn func(*OfferEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if key == nil {
		r.allOffer = append(r.allOffer, fn)
		return
	}
	r.offerListeners[key.ID()] = append(r.offerListeners[key.ID()], fn)
}

// OnChange registers a post-change listener for changes touching key. A nil
// key listens to every change.
func (r *Registry) OnChange(key AnyKey, fn func(*ChangeEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if key == nil {
		r.allChange = append(r.allChange, fn)
		return
	}
	r.changeListeners[key.ID()] = append(r.changeListeners[key.ID()], fn)
}

// offerListenersFor collects the pre-change listeners for trait t. A listener
// registered for several keys of t runs once per key.
func (r *Registry) offerListenersFor(t *Trait) []func(*OfferEvent) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fns := slices.Clone(r.allOffer)
	for _, k := range t.keys {
		fns = append(fns, r.offerListeners[k.ID()]...)
	}
	return fns
}

func (r *Registry) changeListenersFor(t *Trait) []func(*ChangeEvent) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fns := slices.Clone(r.allChange)
	for _, k := range t.keys {
		fns = append(fns, r.changeListeners[k.ID()]...)
	}
	return fns
}

// fireOffer runs the pre-change listeners and reports whether the change was
// cancelled. Listeners are not called when nothing would change.
func (r *Registry) fireOffer(h any, original, proposed *Manipulator) bool {
	if original != nil && original.Equal(proposed) {
		return false
	}
	fns := r.offerListenersFor(proposed.Trait())
	if len(fns) == 0 {
		return false
	}
	ev := &OfferEvent{Holder: h, Original: original, Proposed: proposed.AsImmutable()}
	for _, fn := range fns {
		fn(ev)
	}
	return ev.cancelled
}

func (r *Registry) fireChange(h any, t *Trait, res TransactionResult) {
	fns := r.changeListenersFor(t)
	if len(fns) == 0 {
		return
	}
	ev := &ChangeEvent{Holder: h, Trait: t, Result: res}
	for _, fn := range fns {
		fn(ev)
	}
}
