package pdata

import (
	"time"

	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// The interfaces below are the narrow accessors processors use to reach the
// native fields of a holder. *player.Player implements most of them directly;
// PlayerHolder supplies the rest from session-backed fields.

// HealthHolder is a holder with health.
type HealthHolder interface {
	Health() float64
	MaxHealth() float64
	SetMaxHealth(max float64)
	SetHealth(health float64) error
}

// HealthScaleHolder is a holder whose displayed health can be scaled.
type HealthScaleHolder interface {
	// HealthScale returns the scale, or false if health is not scaled.
	HealthScale() (float64, bool)
	SetHealthScale(scale float64)
	ResetHealthScale()
}

// VelocityHolder is a holder with a velocity.
type VelocityHolder interface {
	Velocity() mgl64.Vec3
	SetVelocity(v mgl64.Vec3)
}

// GravityHolder is a holder that can ignore gravity.
type GravityHolder interface {
	Gravity() bool
	SetGravity(enabled bool)
}

// GlowingHolder is a holder that can glow.
type GlowingHolder interface {
	Glowing() bool
	SetGlowing(glowing bool)
}

// SneakHolder is a holder that can sneak.
type SneakHolder interface {
	Sneaking() bool
	StartSneaking()
	StopSneaking()
}

// SprintHolder is a holder that can sprint.
type SprintHolder interface {
	Sprinting() bool
	StartSprinting()
	StopSprinting()
}

// FlightHolder is a holder that can fly.
type FlightHolder interface {
	Flying() bool
	StartFlying()
	StopFlying()
}

// InvisibilityHolder is a holder that can be invisible.
type InvisibilityHolder interface {
	Invisible() bool
	SetInvisible()
	SetVisible()
}

// FoodHolder is a holder with a food bar.
type FoodHolder interface {
	Food() int
	SetFood(level int)
}

// ExperienceHolder is a holder with experience.
type ExperienceHolder interface {
	ExperienceLevel() int
	SetExperienceLevel(level int)
	ExperienceProgress() float64
	SetExperienceProgress(progress float64)
}

// GameModeHolder is a holder with a game mode.
type GameModeHolder interface {
	GameMode() world.GameMode
	SetGameMode(mode world.GameMode)
}

// NameTagHolder is a holder with a name tag.
type NameTagHolder interface {
	NameTag() string
	SetNameTag(name string)
}

// AbsorptionHolder is a holder with absorption health.
type AbsorptionHolder interface {
	Absorption() float64
	SetAbsorption(health float64)
}

// FireHolder is a holder that can be set on fire.
type FireHolder interface {
	OnFireDuration() time.Duration
	SetOnFire(duration time.Duration)
	Extinguish()
}

// AirHolder is a holder with an air supply.
type AirHolder interface {
	AirSupply() time.Duration
	SetAirSupply(duration time.Duration)
	MaxAirSupply() time.Duration
	SetMaxAirSupply(duration time.Duration)
}

// ActiveItemHolder is a holder that can be using an item, such as a drawn
// bow or food being eaten.
type ActiveItemHolder interface {
	UsingItem() bool
	HeldItems() (mainHand, offHand item.Stack)
	ReleaseItem()
}

// TameableHolder is a holder that can be tamed by a player.
type TameableHolder interface {
	// Owner returns the owner's UUID, or false if the holder is not tamed.
	Owner() (uuid.UUID, bool)
	SetOwner(id uuid.UUID)
	Untame()
}
