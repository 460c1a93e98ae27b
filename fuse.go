package pdata

import (
	"fmt"
	"time"
)

// FuseKind identifies the kind of an Explosive. The set of kinds is closed.
type FuseKind uint8

const (
	FusePrimedTNT FuseKind = iota + 1
	FuseCreeper
	FuseTNTMinecart
	FuseFirework
)

// String returns the name of the kind.
func (k FuseKind) String() string {
	switch k {
	case FusePrimedTNT:
		return "primed_tnt"
	case FuseCreeper:
		return "creeper"
	case FuseTNTMinecart:
		return "tnt_minecart"
	case FuseFirework:
		return "firework"
	}
	return "unknown"
}

// Explosive is a holder with a fuse. FuseKind selects the accessor interface
// the holder implements: PrimedTNT, Creeper, TNTMinecart or Firework.
type Explosive interface {
	FuseKind() FuseKind
}

// PrimedTNT is lit TNT.
type PrimedTNT interface {
	Explosive
	Fuse() time.Duration
	SetFuse(d time.Duration)
}

// Creeper is a creeper. Its fuse is the time it takes to explode once ignited.
type Creeper interface {
	Explosive
	FuseTime() time.Duration
	SetFuseTime(d time.Duration)
}

// TNTMinecart is a minecart carrying TNT. Its fuse is counted in ticks.
type TNTMinecart interface {
	Explosive
	FuseTicks() int
	SetFuseTicks(ticks int)
}

// Firework is a launched firework. Its fuse is its remaining flight time.
type Firework interface {
	Explosive
	FlightDuration() time.Duration
	SetFlightDuration(d time.Duration)
}

// tick is the duration of one server tick.
const tick = time.Second / 20

// fuseAccess is the getter and setter of one explosive's fuse.
type fuseAccess struct {
	get func() time.Duration
	set func(time.Duration) error
}

// setter adapts a setter that accepts every duration.
func setter(set func(time.Duration)) func(time.Duration) error {
	return func(d time.Duration) error {
		set(d)
		return nil
	}
}

// fuseOf returns the fuse accessors of e, or false if e does not implement
// the interface its kind requires.
func fuseOf(e Explosive) (fuseAccess, bool) {
	switch e.FuseKind() {
	case FusePrimedTNT:
		if t, ok := e.(PrimedTNT); ok {
			return fuseAccess{get: t.Fuse, set: setter(t.SetFuse)}, true
		}
	case FuseCreeper:
		if c, ok := e.(Creeper); ok {
			return fuseAccess{get: c.FuseTime, set: setter(c.SetFuseTime)}, true
		}
	case FuseTNTMinecart:
		m, ok := e.(TNTMinecart)
		if !ok {
			return fuseAccess{}, false
		}
		return fuseAccess{
			get: func() time.Duration { return time.Duration(m.FuseTicks()) * tick },
			set: func(d time.Duration) error {
				if d%tick != 0 {
					return fmt.Errorf("minecart fuse %v is not a whole number of ticks", d)
				}
				m.SetFuseTicks(int(d / tick))
				return nil
			},
		}, true
	case FuseFirework:
		if f, ok := e.(Firework); ok {
			return fuseAccess{get: f.FlightDuration, set: setter(f.SetFlightDuration)}, true
		}
	}
	return fuseAccess{}, false
}

// FuseProcessor handles the fuse of explosives. Fuses cannot be removed and
// must not be negative. TNT minecarts count their fuse in ticks, so offering
// them a duration that is not a multiple of a tick is an error.
func FuseProcessor() Processor {
	return NewFieldProcessor(TraitFuse, FieldConfig[Explosive]{
		Supports: func(e Explosive) bool {
			_, ok := fuseOf(e)
			return ok
		},
		Read: func(e Explosive, m *Manipulator) bool {
			f, _ := fuseOf(e)
			_ = Set(m, KeyFuseDuration, f.get())
			return true
		},
		Validate: func(m *Manipulator) error {
			if d := must(m, KeyFuseDuration); d < 0 {
				return rejectf("fuse %v is negative", d)
			}
			return nil
		},
		Write: func(e Explosive, m *Manipulator) error {
			f, _ := fuseOf(e)
			return f.set(must(m, KeyFuseDuration))
		},
	})
}
