package pdata

import (
	"errors"
	"time"

	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// fakePlayer implements every accessor interface with plain fields.
type fakePlayer struct {
	health, maxHealth float64
	// failHealth makes the next SetHealth calls fail after changing health.
	failHealth int
	// panicVelocity makes SetVelocity panic.
	panicVelocity bool

	scale  float64
	scaled bool

	velocity  mgl64.Vec3
	gravity   bool
	glowing   bool
	sneaking  bool
	stuck     bool // StartSneaking and StopSneaking do nothing
	sprinting bool
	flying    bool
	invisible bool

	food     int
	level    int
	progress float64
	mode     world.GameMode
	nameTag  string

	absorption  float64
	fire        time.Duration
	air, maxAir time.Duration

	using bool
	held  item.Stack

	owner uuid.UUID
	tamed bool
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{
		health:    20,
		maxHealth: 20,
		gravity:   true,
		food:      MaxFoodLevel,
		mode:      world.GameModeSurvival,
		air:       15 * time.Second,
		maxAir:    15 * time.Second,
	}
}

func (f *fakePlayer) Health() float64          { return f.health }
func (f *fakePlayer) MaxHealth() float64       { return f.maxHealth }
func (f *fakePlayer) SetMaxHealth(max float64) { f.maxHealth = max; f.health = min(f.health, max) }
func (f *fakePlayer) SetHealth(health float64) error {
	f.health = health
	if f.failHealth > 0 {
		f.failHealth--
		return errors.New("health change cancelled")
	}
	return nil
}

func (f *fakePlayer) HealthScale() (float64, bool)    { return f.scale, f.scaled }
func (f *fakePlayer) SetHealthScale(scale float64)    { f.scale, f.scaled = scale, true }
func (f *fakePlayer) ResetHealthScale()               { f.scale, f.scaled = 0, false }
func (f *fakePlayer) Velocity() mgl64.Vec3            { return f.velocity }
func (f *fakePlayer) Gravity() bool                   { return f.gravity }
func (f *fakePlayer) SetGravity(enabled bool)         { f.gravity = enabled }
func (f *fakePlayer) Glowing() bool                   { return f.glowing }
func (f *fakePlayer) SetGlowing(glowing bool)         { f.glowing = glowing }
func (f *fakePlayer) Sneaking() bool                  { return f.sneaking }
func (f *fakePlayer) Sprinting() bool                 { return f.sprinting }
func (f *fakePlayer) StartSprinting()                 { f.sprinting = true }
func (f *fakePlayer) StopSprinting()                  { f.sprinting = false }
func (f *fakePlayer) Flying() bool                    { return f.flying }
func (f *fakePlayer) StartFlying()                    { f.flying = true }
func (f *fakePlayer) StopFlying()                     { f.flying = false }
func (f *fakePlayer) Invisible() bool                 { return f.invisible }
func (f *fakePlayer) SetInvisible()                   { f.invisible = true }
func (f *fakePlayer) SetVisible()                     { f.invisible = false }
func (f *fakePlayer) Food() int                       { return f.food }
func (f *fakePlayer) SetFood(level int)               { f.food = level }
func (f *fakePlayer) ExperienceLevel() int            { return f.level }
func (f *fakePlayer) SetExperienceLevel(level int)    { f.level = level }
func (f *fakePlayer) ExperienceProgress() float64     { return f.progress }
func (f *fakePlayer) SetExperienceProgress(p float64) { f.progress = p }
func (f *fakePlayer) GameMode() world.GameMode        { return f.mode }
func (f *fakePlayer) SetGameMode(mode world.GameMode) { f.mode = mode }
func (f *fakePlayer) NameTag() string                 { return f.nameTag }
func (f *fakePlayer) SetNameTag(name string)          { f.nameTag = name }
func (f *fakePlayer) Absorption() float64             { return f.absorption }
func (f *fakePlayer) SetAbsorption(health float64)    { f.absorption = health }
func (f *fakePlayer) OnFireDuration() time.Duration   { return f.fire }
func (f *fakePlayer) SetOnFire(d time.Duration)       { f.fire = d }
func (f *fakePlayer) Extinguish()                     { f.fire = 0 }
func (f *fakePlayer) AirSupply() time.Duration        { return f.air }
func (f *fakePlayer) SetAirSupply(d time.Duration)    { f.air = d }
func (f *fakePlayer) MaxAirSupply() time.Duration     { return f.maxAir }
func (f *fakePlayer) SetMaxAirSupply(d time.Duration) { f.maxAir = d }
func (f *fakePlayer) UsingItem() bool                 { return f.using }
func (f *fakePlayer) ReleaseItem()                    { f.using = false }
func (f *fakePlayer) Owner() (uuid.UUID, bool)        { return f.owner, f.tamed }
func (f *fakePlayer) SetOwner(id uuid.UUID)           { f.owner, f.tamed = id, true }
func (f *fakePlayer) Untame()                         { f.owner, f.tamed = uuid.Nil, false }

func (f *fakePlayer) SetVelocity(v mgl64.Vec3) {
	if f.panicVelocity {
		panic("velocity out of range")
	}
	f.velocity = v
}

func (f *fakePlayer) StartSneaking() {
	if !f.stuck {
		f.sneaking = true
	}
}

func (f *fakePlayer) StopSneaking() {
	if !f.stuck {
		f.sneaking = false
	}
}

func (f *fakePlayer) HeldItems() (mainHand, offHand item.Stack) {
	return f.held, item.Stack{}
}

// fakeTNT is primed TNT.
type fakeTNT struct{ fuse time.Duration }

func (*fakeTNT) FuseKind() FuseKind        { return FusePrimedTNT }
func (t *fakeTNT) Fuse() time.Duration     { return t.fuse }
func (t *fakeTNT) SetFuse(d time.Duration) { t.fuse = d }

// fakeCreeper is a creeper.
type fakeCreeper struct{ fuse time.Duration }

func (*fakeCreeper) FuseKind() FuseKind            { return FuseCreeper }
func (c *fakeCreeper) FuseTime() time.Duration     { return c.fuse }
func (c *fakeCreeper) SetFuseTime(d time.Duration) { c.fuse = d }

// fakeMinecart is a TNT minecart.
type fakeMinecart struct{ ticks int }

func (*fakeMinecart) FuseKind() FuseKind       { return FuseTNTMinecart }
func (m *fakeMinecart) FuseTicks() int         { return m.ticks }
func (m *fakeMinecart) SetFuseTicks(ticks int) { m.ticks = ticks }

// fakeFirework is a launched firework.
type fakeFirework struct{ flight time.Duration }

func (*fakeFirework) FuseKind() FuseKind                  { return FuseFirework }
func (f *fakeFirework) FlightDuration() time.Duration     { return f.flight }
func (f *fakeFirework) SetFlightDuration(d time.Duration) { f.flight = d }

// liar claims to be a creeper but only implements PrimedTNT.
type liar struct{ fakeTNT }

func (*liar) FuseKind() FuseKind { return FuseCreeper }

// builtinRegistry returns a registry with every built-in processor.
func builtinRegistry() *Registry {
	r := NewRegistry()
	for _, p := range BuiltinProcessors() {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
	return r
}
