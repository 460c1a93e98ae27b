package pdata

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
)

// rejectf returns a validation error wrapping ErrValidation.
func rejectf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// must returns the value stored under key in a manipulator of the key's
// trait. Processors only call it with keys of their own trait.
func must[T any](m *Manipulator, key Key[T]) T {
	v, _ := Get(m, key)
	return v
}

// HealthProcessor handles health and max health. Health must lie in
// [0, max health] and max health must be positive. If writing fails, the
// previous health and max health are restored.
func HealthProcessor() Processor {
	return NewFieldProcessor(TraitHealth, FieldConfig[HealthHolder]{
		Read: func(h HealthHolder, m *Manipulator) bool {
			_ = Set(m, KeyHealth, h.Health())
			_ = Set(m, KeyMaxHealth, h.MaxHealth())
			return true
		},
		Validate: func(m *Manipulator) error {
			health, max := must(m, KeyHealth), must(m, KeyMaxHealth)
			if max <= 0 {
				return rejectf("max health %v must be positive", max)
			}
			if !NewBounded(KeyHealth, health, 20, 0, max).InBounds() {
				return rejectf("health %v outside [0, %v]", health, max)
			}
			return nil
		},
		Write: func(h HealthHolder, m *Manipulator) error {
			// Max health first: lowering it clamps health.
			h.SetMaxHealth(must(m, KeyMaxHealth))
			return h.SetHealth(must(m, KeyHealth))
		},
	})
}

// HealthScaleProcessor handles the health scale. Scales outside
// [MinHealthScale, MaxHealthScale] are rejected. Removing the trait turns
// scaling off.
func HealthScaleProcessor() Processor {
	return NewFieldProcessor(TraitHealthScale, FieldConfig[HealthScaleHolder]{
		Read: func(h HealthScaleHolder, m *Manipulator) bool {
			scale, ok := h.HealthScale()
			if !ok {
				return false
			}
			_ = Set(m, KeyHealthScale, scale)
			return true
		},
		Validate: func(m *Manipulator) error {
			scale := must(m, KeyHealthScale)
			if !NewBounded(KeyHealthScale, scale, 20, MinHealthScale, MaxHealthScale).InBounds() {
				return rejectf("health scale %v outside [%v, %v]", scale, MinHealthScale, MaxHealthScale)
			}
			return nil
		},
		Write: func(h HealthScaleHolder, m *Manipulator) error {
			h.SetHealthScale(must(m, KeyHealthScale))
			return nil
		},
		Remove: func(h HealthScaleHolder) error {
			h.ResetHealthScale()
			return nil
		},
	})
}

// VelocityProcessor handles velocity. Velocity cannot be removed.
func VelocityProcessor() Processor {
	return NewFieldProcessor(TraitVelocity, FieldConfig[VelocityHolder]{
		Read: func(h VelocityHolder, m *Manipulator) bool {
			_ = Set(m, KeyVelocity, h.Velocity())
			return true
		},
		Write: func(h VelocityHolder, m *Manipulator) error {
			h.SetVelocity(must(m, KeyVelocity))
			return nil
		},
	})
}

// GravityProcessor handles whether gravity applies. It cannot be removed.
func GravityProcessor() Processor {
	return boolProcessor(TraitGravity, KeyGravity, GravityHolder.Gravity, GravityHolder.SetGravity)
}

// GlowingProcessor handles the glowing outline. It cannot be removed.
func GlowingProcessor() Processor {
	return boolProcessor(TraitGlowing, KeyGlowing, GlowingHolder.Glowing, GlowingHolder.SetGlowing)
}

// boolProcessor builds a non-removable processor for a single boolean field.
func boolProcessor[H any](t *Trait, key Key[bool], get func(H) bool, set func(H, bool)) Processor {
	return NewFieldProcessor(t, FieldConfig[H]{
		Read: func(h H, m *Manipulator) bool {
			_ = Set(m, key, get(h))
			return true
		},
		Write: func(h H, m *Manipulator) error {
			set(h, must(m, key))
			return nil
		},
	})
}

// toggleProcessor builds a non-removable processor for a boolean state
// that the holder changes through start and stop methods.
func toggleProcessor[H any](t *Trait, key Key[bool], get func(H) bool, start, stop func(H)) Processor {
	return boolProcessor(t, key, get, func(h H, on bool) {
		switch {
		case on && !get(h):
			start(h)
		case !on && get(h):
			stop(h)
		}
	})
}

// SneakingProcessor handles sneaking. Failures of the host surface as Error
// results.
func SneakingProcessor() Processor {
	return NewFieldProcessor(TraitSneaking, FieldConfig[SneakHolder]{
		Read: func(h SneakHolder, m *Manipulator) bool {
			_ = Set(m, KeySneaking, h.Sneaking())
			return true
		},
		Write: func(h SneakHolder, m *Manipulator) error {
			want := must(m, KeySneaking)
			switch {
			case want && !h.Sneaking():
				h.StartSneaking()
			case !want && h.Sneaking():
				h.StopSneaking()
			}
			if h.Sneaking() != want {
				return fmt.Errorf("sneaking is %v after setting %v", h.Sneaking(), want)
			}
			return nil
		},
	})
}

// SprintingProcessor handles sprinting.
func SprintingProcessor() Processor {
	return toggleProcessor(TraitSprinting, KeySprinting, SprintHolder.Sprinting, SprintHolder.StartSprinting, SprintHolder.StopSprinting)
}

// FlyingProcessor handles flying.
func FlyingProcessor() Processor {
	return toggleProcessor(TraitFlying, KeyFlying, FlightHolder.Flying, FlightHolder.StartFlying, FlightHolder.StopFlying)
}

// InvisibilityProcessor handles invisibility. Removing it makes the holder
// visible.
func InvisibilityProcessor() Processor {
	return NewFieldProcessor(TraitInvisible, FieldConfig[InvisibilityHolder]{
		Read: func(h InvisibilityHolder, m *Manipulator) bool {
			_ = Set(m, KeyInvisible, h.Invisible())
			return true
		},
		Write: func(h InvisibilityHolder, m *Manipulator) error {
			if must(m, KeyInvisible) {
				h.SetInvisible()
			} else {
				h.SetVisible()
			}
			return nil
		},
		Remove: func(h InvisibilityHolder) error {
			h.SetVisible()
			return nil
		},
	})
}

// FoodProcessor handles the food level, which must lie in [0, MaxFoodLevel].
func FoodProcessor() Processor {
	return NewFieldProcessor(TraitFood, FieldConfig[FoodHolder]{
		Read: func(h FoodHolder, m *Manipulator) bool {
			_ = Set(m, KeyFoodLevel, h.Food())
			return true
		},
		Validate: func(m *Manipulator) error {
			if food := must(m, KeyFoodLevel); food < 0 || food > MaxFoodLevel {
				return rejectf("food level %d outside [0, %d]", food, MaxFoodLevel)
			}
			return nil
		},
		Write: func(h FoodHolder, m *Manipulator) error {
			h.SetFood(must(m, KeyFoodLevel))
			return nil
		},
	})
}

// ExperienceProcessor handles the experience level and the progress towards
// the next level.
func ExperienceProcessor() Processor {
	return NewFieldProcessor(TraitExperience, FieldConfig[ExperienceHolder]{
		Read: func(h ExperienceHolder, m *Manipulator) bool {
			_ = Set(m, KeyExperienceLevel, h.ExperienceLevel())
			_ = Set(m, KeyExperienceProgress, h.ExperienceProgress())
			return true
		},
		Validate: func(m *Manipulator) error {
			if level := must(m, KeyExperienceLevel); level < 0 {
				return rejectf("experience level %d is negative", level)
			}
			if p := must(m, KeyExperienceProgress); p < 0 || p >= 1 {
				return rejectf("experience progress %v outside [0, 1)", p)
			}
			return nil
		},
		Write: func(h ExperienceHolder, m *Manipulator) error {
			h.SetExperienceLevel(must(m, KeyExperienceLevel))
			h.SetExperienceProgress(must(m, KeyExperienceProgress))
			return nil
		},
	})
}

// GameModeProcessor handles the game mode.
func GameModeProcessor() Processor {
	return NewFieldProcessor(TraitGameMode, FieldConfig[GameModeHolder]{
		Read: func(h GameModeHolder, m *Manipulator) bool {
			_ = Set(m, KeyGameMode, h.GameMode())
			return true
		},
		Validate: func(m *Manipulator) error {
			if _, ok := world.GameModeID(must(m, KeyGameMode)); !ok {
				return rejectf("unknown game mode")
			}
			return nil
		},
		Write: func(h GameModeHolder, m *Manipulator) error {
			h.SetGameMode(must(m, KeyGameMode))
			return nil
		},
	})
}

// DisplayNameProcessor handles the name tag. A holder without a name tag
// has no display name, so an empty name is rejected; removing the trait
// clears the tag.
func DisplayNameProcessor() Processor {
	return NewFieldProcessor(TraitDisplayName, FieldConfig[NameTagHolder]{
		Read: func(h NameTagHolder, m *Manipulator) bool {
			name := h.NameTag()
			if name == "" {
				return false
			}
			_ = Set(m, KeyDisplayName, name)
			return true
		},
		Validate: func(m *Manipulator) error {
			if must(m, KeyDisplayName) == "" {
				return rejectf("display name is empty")
			}
			return nil
		},
		Write: func(h NameTagHolder, m *Manipulator) error {
			h.SetNameTag(must(m, KeyDisplayName))
			return nil
		},
		Remove: func(h NameTagHolder) error {
			h.SetNameTag("")
			return nil
		},
	})
}

// AbsorptionProcessor handles absorption health. Removing it sets it to zero.
func AbsorptionProcessor() Processor {
	return NewFieldProcessor(TraitAbsorption, FieldConfig[AbsorptionHolder]{
		Read: func(h AbsorptionHolder, m *Manipulator) bool {
			_ = Set(m, KeyAbsorption, h.Absorption())
			return true
		},
		Validate: func(m *Manipulator) error {
			if v := must(m, KeyAbsorption); v < 0 {
				return rejectf("absorption %v is negative", v)
			}
			return nil
		},
		Write: func(h AbsorptionHolder, m *Manipulator) error {
			h.SetAbsorption(must(m, KeyAbsorption))
			return nil
		},
		Remove: func(h AbsorptionHolder) error {
			h.SetAbsorption(0)
			return nil
		},
	})
}

// FireProcessor handles how long the holder keeps burning. A holder that is
// not burning has no fire data, so durations must be positive; removing the
// trait extinguishes it.
func FireProcessor() Processor {
	return NewFieldProcessor(TraitFire, FieldConfig[FireHolder]{
		Read: func(h FireHolder, m *Manipulator) bool {
			d := h.OnFireDuration()
			if d <= 0 {
				return false
			}
			_ = Set(m, KeyFireDuration, d)
			return true
		},
		Validate: func(m *Manipulator) error {
			if d := must(m, KeyFireDuration); d <= 0 {
				return rejectf("fire duration %v is not positive", d)
			}
			return nil
		},
		Write: func(h FireHolder, m *Manipulator) error {
			h.SetOnFire(must(m, KeyFireDuration))
			return nil
		},
		Remove: func(h FireHolder) error {
			h.Extinguish()
			return nil
		},
	})
}

// AirProcessor handles the remaining and maximum air supply.
func AirProcessor() Processor {
	return NewFieldProcessor(TraitAir, FieldConfig[AirHolder]{
		Read: func(h AirHolder, m *Manipulator) bool {
			_ = Set(m, KeyRemainingAir, h.AirSupply())
			_ = Set(m, KeyMaxAir, h.MaxAirSupply())
			return true
		},
		Validate: func(m *Manipulator) error {
			remaining, max := must(m, KeyRemainingAir), must(m, KeyMaxAir)
			if max < 0 {
				return rejectf("max air %v is negative", max)
			}
			if !NewBounded(KeyRemainingAir, remaining, max, 0, max).InBounds() {
				return rejectf("remaining air %v outside [0, %v]", remaining, max)
			}
			return nil
		},
		Write: func(h AirHolder, m *Manipulator) error {
			h.SetMaxAirSupply(must(m, KeyMaxAir))
			h.SetAirSupply(must(m, KeyRemainingAir))
			return nil
		},
	})
}

// ActiveItemProcessor exposes the item a holder is using. The only change it
// supports is clearing the active item, which releases it; offering a
// non-empty item fails. Removing the trait also releases the item.
func ActiveItemProcessor() Processor {
	return NewFieldProcessor(TraitActiveItem, FieldConfig[ActiveItemHolder]{
		Read: func(h ActiveItemHolder, m *Manipulator) bool {
			if !h.UsingItem() {
				_ = Set(m, KeyActiveItem, item.Stack{})
				return true
			}
			main, _ := h.HeldItems()
			_ = Set(m, KeyActiveItem, main)
			return true
		},
		Validate: func(m *Manipulator) error {
			if !must(m, KeyActiveItem).Empty() {
				return rejectf("an active item can only be cleared")
			}
			return nil
		},
		Write: func(h ActiveItemHolder, m *Manipulator) error {
			if h.UsingItem() {
				h.ReleaseItem()
			}
			return nil
		},
		Remove: func(h ActiveItemHolder) error {
			if h.UsingItem() {
				h.ReleaseItem()
			}
			return nil
		},
	})
}

// TameableProcessor handles the owner of a tameable holder. An untamed
// holder has no data, so the nil owner is rejected; removing the trait
// untames it.
func TameableProcessor() Processor {
	return NewFieldProcessor(TraitTameable, FieldConfig[TameableHolder]{
		Read: func(h TameableHolder, m *Manipulator) bool {
			owner, ok := h.Owner()
			if !ok {
				return false
			}
			_ = Set(m, KeyOwner, owner)
			return true
		},
		Validate: func(m *Manipulator) error {
			if must(m, KeyOwner) == uuid.Nil {
				return rejectf("owner is nil")
			}
			return nil
		},
		Write: func(h TameableHolder, m *Manipulator) error {
			h.SetOwner(must(m, KeyOwner))
			return nil
		},
		Remove: func(h TameableHolder) error {
			h.Untame()
			return nil
		},
	})
}

// BuiltinProcessors returns one instance of every built-in processor.
func BuiltinProcessors() []Processor {
	return []Processor{
		HealthProcessor(),
		HealthScaleProcessor(),
		VelocityProcessor(),
		GravityProcessor(),
		GlowingProcessor(),
		SneakingProcessor(),
		SprintingProcessor(),
		FlyingProcessor(),
		InvisibilityProcessor(),
		FoodProcessor(),
		ExperienceProcessor(),
		GameModeProcessor(),
		DisplayNameProcessor(),
		AbsorptionProcessor(),
		FireProcessor(),
		AirProcessor(),
		ActiveItemProcessor(),
		FuseProcessor(),
		TameableProcessor(),
	}
}
