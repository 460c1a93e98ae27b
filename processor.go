package pdata

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrUnsupported is returned when a holder does not support a trait.
	ErrUnsupported = errors.New("holder does not support trait")
	// ErrValidation is wrapped by validation errors of processors.
	ErrValidation = errors.New("value rejected")
)

// Processor bridges a Trait to the native fields of the holders it supports.
//
// Processors never return errors or panic: every outcome is reported as a
// TransactionResult. A Processor must be consistent: if Supports returns
// true for a holder, From must not fail for that holder.
type Processor interface {
	// Trait returns the trait handled by the processor.
	Trait() *Trait

	// Supports reports whether the holder has the trait. It has no side
	// effects.
	Supports(h any) bool

	// From reads the holder's current values into a fresh manipulator.
	// It returns false if the holder is unsupported or the data is absent.
	From(h any) (*Manipulator, bool)

	// Set merges the holder's current values with m using fn and writes the
	// result. Either all values are applied, or none are.
	Set(h any, m *Manipulator, fn MergeFunction) TransactionResult

	// RemoveFrom reverts the trait to its absent state. Traits without an
	// absent state report FailNoData.
	RemoveFrom(h any) TransactionResult

	// Fill decodes the trait's values from a persisted container into a copy
	// of m, or into a fresh manipulator if m is nil.
	Fill(c Container, m *Manipulator) (*Manipulator, bool)
}

// FieldConfig holds the accessors a FieldProcessor applies to holders of
// type H.
type FieldConfig[H any] struct {
	// Supports is an optional extra predicate for holders that satisfy H.
	Supports func(h H) bool

	// Read copies the holder's current values into m. It returns false if
	// the holder currently has no data for the trait.
	Read func(h H, m *Manipulator) bool

	// Write applies every value of m to the holder.
	Write func(h H, m *Manipulator) error

	// Remove reverts the trait to absent. A nil Remove makes the trait
	// non-removable.
	Remove func(h H) error

	// Validate is called on the merged values before anything is written.
	Validate func(m *Manipulator) error
}

// FieldProcessor is a Processor over holders implementing H, usually a narrow
// accessor interface such as HealthHolder. Leaf processors are configurations
// of it.
type FieldProcessor[H any] struct {
	trait *Trait
	cfg   FieldConfig[H]
}

// NewFieldProcessor creates a processor for trait. It panics if cfg has no
// Read or Write accessor.
func NewFieldProcessor[H any](trait *Trait, cfg FieldConfig[H]) *FieldProcessor[H] {
	if cfg.Read == nil || cfg.Write == nil {
		panic(fmt.Sprintf("pdata: processor for %s needs Read and Write", trait.Name()))
	}
	return &FieldProcessor[H]{trait: trait, cfg: cfg}
}

// Compile-time check that FieldProcessor implements Processor.
var _ Processor = (*FieldProcessor[any])(nil)

// Trait implements Processor.
func (p *FieldProcessor[H]) Trait() *Trait { return p.trait }

// holder returns h as H if the processor supports it.
func (p *FieldProcessor[H]) holder(h any) (H, bool) {
	hh, ok := h.(H)
	if !ok {
		return hh, false
	}
	if p.cfg.Supports != nil && !p.cfg.Supports(hh) {
		return hh, false
	}
	return hh, true
}

// Supports implements Processor.
func (p *FieldProcessor[H]) Supports(h any) bool {
	_, ok := p.holder(h)
	return ok
}

// From implements Processor.
func (p *FieldProcessor[H]) From(h any) (*Manipulator, bool) {
	hh, ok := p.holder(h)
	if !ok {
		return nil, false
	}
	return p.read(hh)
}

func (p *FieldProcessor[H]) read(h H) (*Manipulator, bool) {
	m := p.trait.New()
	if !p.cfg.Read(h, m) {
		return nil, false
	}
	return m, true
}

// Set implements Processor.
func (p *FieldProcessor[H]) Set(h any, m *Manipulator, fn MergeFunction) TransactionResult {
	if m == nil || m.trait != p.trait {
		return FailNoData()
	}
	hh, ok := p.holder(h)
	if !ok {
		return FailResult(m.Values()...)
	}

	original, present := p.read(hh)
	merged := merge(fn, original, m)
	if merged == nil {
		return FailResult(m.Values()...)
	}

	if p.cfg.Validate != nil {
		if err := p.cfg.Validate(merged); err != nil {
			slog.Debug("pdata: values rejected", "trait", p.trait.Name(), "error", err)
			return FailResult(merged.Values()...)
		}
	}

	if err := p.write(hh, merged); err != nil {
		slog.Debug("pdata: write failed, rolling back", "trait", p.trait.Name(), "error", err)
		if present {
			if rerr := p.write(hh, original); rerr != nil {
				slog.Warn("pdata: rollback failed", "trait", p.trait.Name(), "error", rerr)
			}
		}
		return ErrorResult(merged.Values()...)
	}

	if !present {
		return SuccessResult(merged.Values()...)
	}
	return SuccessReplaceResult(merged.Values(), original.Values())
}

// write applies m and converts a panic of the accessor into an error.
func (p *FieldProcessor[H]) write(h H, m *Manipulator) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while writing %s: %v", p.trait.Name(), r)
		}
	}()
	return p.cfg.Write(h, m)
}

// RemoveFrom implements Processor.
func (p *FieldProcessor[H]) RemoveFrom(h any) TransactionResult {
	hh, ok := p.holder(h)
	if !ok || p.cfg.Remove == nil {
		return FailNoData()
	}
	original, present := p.read(hh)
	if !present {
		return FailNoData()
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic while removing %s: %v", p.trait.Name(), r)
			}
		}()
		return p.cfg.Remove(hh)
	}()
	if err != nil {
		slog.Debug("pdata: remove failed", "trait", p.trait.Name(), "error", err)
		if rerr := p.write(hh, original); rerr != nil {
			slog.Warn("pdata: rollback failed", "trait", p.trait.Name(), "error", rerr)
		}
		return ErrorResult(original.Values()...)
	}
	return SuccessReplaceResult(nil, original.Values())
}

// Fill implements Processor.
func (p *FieldProcessor[H]) Fill(c Container, m *Manipulator) (*Manipulator, bool) {
	if c == nil {
		return nil, false
	}
	if m == nil {
		m = p.trait.New()
	} else if m.trait != p.trait {
		return nil, false
	} else {
		m = m.AsMutable()
	}
	found, err := m.fill(c)
	if err != nil {
		slog.Debug("pdata: fill failed", "trait", p.trait.Name(), "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	return m, true
}
