package pdata

import (
	"math"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthValidation(t *testing.T) {
	p := HealthProcessor()
	h := newFakePlayer()

	for _, tc := range []struct {
		name        string
		health, max float64
	}{
		{"negative health", -1, 20},
		{"health above max", 21, 20},
		{"zero max", 0, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := TraitHealth.New()
			require.NoError(t, Set(m, KeyHealth, tc.health))
			require.NoError(t, Set(m, KeyMaxHealth, tc.max))
			assert.Equal(t, Failure, p.Set(h, m, KeepReplacement).Type())
			assert.Equal(t, 20.0, h.health)
			assert.Equal(t, 20.0, h.maxHealth)
		})
	}
	assert.Equal(t, FailNoData().Type(), p.RemoveFrom(h).Type())
}

func TestHealthScaleBounds(t *testing.T) {
	p := HealthScaleProcessor()
	h := newFakePlayer()

	_, ok := p.From(h)
	assert.False(t, ok, "unscaled holders have no health scale")

	m, _ := With(TraitHealthScale.New(), KeyHealthScale, 10.0)
	res := p.Set(h, m, KeepReplacement)
	require.Equal(t, Success, res.Type())
	assert.Empty(t, res.Replaced())

	for _, scale := range []float64{0.5, math.MaxFloat64} {
		m, _ := With(TraitHealthScale.New(), KeyHealthScale, scale)
		assert.Equal(t, Failure, p.Set(h, m, KeepReplacement).Type())
		assert.Equal(t, 10.0, h.scale)
	}

	m, _ = With(TraitHealthScale.New(), KeyHealthScale, MaxHealthScale)
	assert.Equal(t, Success, p.Set(h, m, KeepReplacement).Type())

	res = p.RemoveFrom(h)
	assert.Equal(t, Success, res.Type())
	assert.Len(t, res.Replaced(), 1)
	assert.False(t, h.scaled)
	assert.Equal(t, Failure, p.RemoveFrom(h).Type())
}

func TestNonRemovableTraits(t *testing.T) {
	h := newFakePlayer()
	h.velocity = mgl64.Vec3{1, 2, 3}
	h.glowing = true

	for _, p := range []Processor{VelocityProcessor(), GravityProcessor(), GlowingProcessor()} {
		t.Run(p.Trait().Name(), func(t *testing.T) {
			res := p.RemoveFrom(h)
			assert.Equal(t, Failure, res.Type())
			assert.Empty(t, res.Rejected())
		})
	}
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, h.velocity)
	assert.True(t, h.gravity)
	assert.True(t, h.glowing)
}

func TestBooleanTraits(t *testing.T) {
	h := newFakePlayer()
	cases := []struct {
		p   Processor
		key Key[bool]
		get func() bool
	}{
		{GravityProcessor(), KeyGravity, func() bool { return h.gravity }},
		{GlowingProcessor(), KeyGlowing, func() bool { return h.glowing }},
		{SprintingProcessor(), KeySprinting, func() bool { return h.sprinting }},
		{FlyingProcessor(), KeyFlying, func() bool { return h.flying }},
		{InvisibilityProcessor(), KeyInvisible, func() bool { return h.invisible }},
	}
	for _, tc := range cases {
		t.Run(tc.p.Trait().Name(), func(t *testing.T) {
			want := !tc.get()
			m, _ := With(tc.p.Trait().New(), tc.key, want)
			require.Equal(t, Success, tc.p.Set(h, m, KeepReplacement).Type())
			assert.Equal(t, want, tc.get())

			m, _ = With(tc.p.Trait().New(), tc.key, !want)
			require.Equal(t, Success, tc.p.Set(h, m, KeepReplacement).Type())
			assert.Equal(t, !want, tc.get())
		})
	}
}

func TestInvisibilityRemove(t *testing.T) {
	p := InvisibilityProcessor()
	h := newFakePlayer()
	h.invisible = true
	assert.Equal(t, Success, p.RemoveFrom(h).Type())
	assert.False(t, h.invisible)
}

func TestFoodAndExperience(t *testing.T) {
	h := newFakePlayer()

	food := FoodProcessor()
	for _, level := range []int{-1, MaxFoodLevel + 1} {
		m, _ := With(TraitFood.New(), KeyFoodLevel, level)
		assert.Equal(t, Failure, food.Set(h, m, KeepReplacement).Type())
	}
	m, _ := With(TraitFood.New(), KeyFoodLevel, 0)
	assert.Equal(t, Success, food.Set(h, m, KeepReplacement).Type())
	assert.Equal(t, 0, h.food)

	xp := ExperienceProcessor()
	m = TraitExperience.New()
	require.NoError(t, Set(m, KeyExperienceLevel, 30))
	require.NoError(t, Set(m, KeyExperienceProgress, 0.5))
	assert.Equal(t, Success, xp.Set(h, m, KeepReplacement).Type())
	assert.Equal(t, 30, h.level)
	assert.Equal(t, 0.5, h.progress)

	require.NoError(t, Set(m, KeyExperienceProgress, 1.0))
	assert.Equal(t, Failure, xp.Set(h, m, KeepReplacement).Type())
	require.NoError(t, Set(m, KeyExperienceProgress, 0.0))
	require.NoError(t, Set(m, KeyExperienceLevel, -1))
	assert.Equal(t, Failure, xp.Set(h, m, KeepReplacement).Type())
	assert.Equal(t, 30, h.level)
}

func TestGameMode(t *testing.T) {
	p := GameModeProcessor()
	h := newFakePlayer()

	m, _ := With[world.GameMode](TraitGameMode.New(), KeyGameMode, world.GameModeCreative)
	require.Equal(t, Success, p.Set(h, m, KeepReplacement).Type())
	assert.Equal(t, world.GameModeCreative, h.mode)

	got, ok := p.From(h)
	require.True(t, ok)
	assert.Equal(t, world.GameModeCreative, must(got, KeyGameMode))
}

func TestDisplayName(t *testing.T) {
	p := DisplayNameProcessor()
	h := newFakePlayer()

	_, ok := p.From(h)
	assert.False(t, ok)

	m, _ := With(TraitDisplayName.New(), KeyDisplayName, "Steve")
	require.Equal(t, Success, p.Set(h, m, KeepReplacement).Type())
	assert.Equal(t, "Steve", h.nameTag)

	m, _ = With(TraitDisplayName.New(), KeyDisplayName, "")
	assert.Equal(t, Failure, p.Set(h, m, KeepReplacement).Type())
	assert.Equal(t, "Steve", h.nameTag)

	assert.Equal(t, Success, p.RemoveFrom(h).Type())
	assert.Empty(t, h.nameTag)
	_, ok = p.From(h)
	assert.False(t, ok)
}

func TestAbsorptionAndFire(t *testing.T) {
	h := newFakePlayer()

	abs := AbsorptionProcessor()
	m, _ := With(TraitAbsorption.New(), KeyAbsorption, -2.0)
	assert.Equal(t, Failure, abs.Set(h, m, KeepReplacement).Type())
	m, _ = With(TraitAbsorption.New(), KeyAbsorption, 4.0)
	require.Equal(t, Success, abs.Set(h, m, KeepReplacement).Type())
	assert.Equal(t, 4.0, h.absorption)
	require.Equal(t, Success, abs.RemoveFrom(h).Type())
	assert.Zero(t, h.absorption)

	fire := FireProcessor()
	_, ok := fire.From(h)
	assert.False(t, ok, "a holder that is not burning has no fire data")

	m, _ = With(TraitFire.New(), KeyFireDuration, 3*time.Second)
	require.Equal(t, Success, fire.Set(h, m, KeepReplacement).Type())
	assert.Equal(t, 3*time.Second, h.fire)

	// Zero means not burning, which only RemoveFrom produces.
	m, _ = With(TraitFire.New(), KeyFireDuration, time.Duration(0))
	assert.Equal(t, Failure, fire.Set(h, m, KeepReplacement).Type())
	assert.Equal(t, 3*time.Second, h.fire)
	got, ok := fire.From(h)
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, must(got, KeyFireDuration))

	require.Equal(t, Success, fire.RemoveFrom(h).Type())
	assert.Zero(t, h.fire)
	_, ok = fire.From(h)
	assert.False(t, ok)
}

func TestAir(t *testing.T) {
	p := AirProcessor()
	h := newFakePlayer()

	m := TraitAir.New()
	require.NoError(t, Set(m, KeyRemainingAir, 20*time.Second))
	assert.Equal(t, Failure, p.Set(h, m, KeepReplacement).Type())

	require.NoError(t, Set(m, KeyMaxAir, 30*time.Second))
	require.Equal(t, Success, p.Set(h, m, KeepReplacement).Type())
	assert.Equal(t, 20*time.Second, h.air)
	assert.Equal(t, 30*time.Second, h.maxAir)
}

func TestActiveItem(t *testing.T) {
	p := ActiveItemProcessor()
	h := newFakePlayer()
	h.held = item.NewStack(item.Apple{}, 1)
	h.using = true

	got, ok := p.From(h)
	require.True(t, ok)
	assert.False(t, must(got, KeyActiveItem).Empty())

	offered := TraitActiveItem.New()
	offered, _ = With(offered, KeyActiveItem, item.NewStack(item.Apple{}, 1))
	assert.Equal(t, Failure, p.Set(h, offered, KeepReplacement).Type())
	assert.True(t, h.using)

	res := p.Set(h, TraitActiveItem.New(), KeepReplacement)
	assert.Equal(t, Success, res.Type())
	assert.False(t, h.using)

	got, ok = p.From(h)
	require.True(t, ok)
	assert.True(t, must(got, KeyActiveItem).Empty())

	h.using = true
	assert.Equal(t, Success, p.RemoveFrom(h).Type())
	assert.False(t, h.using)
}

func TestTameable(t *testing.T) {
	p := TameableProcessor()
	h := newFakePlayer()

	_, ok := p.From(h)
	assert.False(t, ok)
	assert.Equal(t, Failure, p.RemoveFrom(h).Type())

	owner := uuid.New()
	m, _ := With(TraitTameable.New(), KeyOwner, owner)
	res := p.Set(h, m, KeepReplacement)
	require.Equal(t, Success, res.Type())
	assert.Empty(t, res.Replaced())
	assert.True(t, h.tamed)
	assert.Equal(t, owner, h.owner)

	got, ok := p.From(h)
	require.True(t, ok)
	assert.Equal(t, owner, must(got, KeyOwner))

	assert.Equal(t, Failure, p.Set(h, TraitTameable.New(), KeepReplacement).Type())
	assert.True(t, h.tamed)
	assert.Equal(t, owner, h.owner)

	require.Equal(t, Success, p.RemoveFrom(h).Type())
	assert.False(t, h.tamed)
	_, ok = p.From(h)
	assert.False(t, ok)
}
