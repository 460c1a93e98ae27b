package pdata

import (
	"math"
	"time"

	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Built-in keys.
var (
	KeyHealth             = NewKey[float64]("health")
	KeyMaxHealth          = NewKey[float64]("max_health")
	KeyHealthScale        = NewKey[float64]("health_scale")
	KeyVelocity           = NewKey[mgl64.Vec3]("velocity")
	KeyGravity            = NewKey[bool]("gravity")
	KeyGlowing            = NewKey[bool]("glowing")
	KeySneaking           = NewKey[bool]("sneaking")
	KeySprinting          = NewKey[bool]("sprinting")
	KeyFlying             = NewKey[bool]("flying")
	KeyInvisible          = NewKey[bool]("invisible")
	KeyFoodLevel          = NewKey[int]("food_level")
	KeyExperienceLevel    = NewKey[int]("experience_level")
	KeyExperienceProgress = NewKey[float64]("experience_progress")
	KeyGameMode           = NewKey[world.GameMode]("game_mode")
	KeyDisplayName        = NewKey[string]("display_name")
	KeyAbsorption         = NewKey[float64]("absorption")
	KeyFireDuration       = NewKey[time.Duration]("fire_duration")
	KeyRemainingAir       = NewKey[time.Duration]("remaining_air")
	KeyMaxAir             = NewKey[time.Duration]("max_air")
	KeyFuseDuration       = NewKey[time.Duration]("fuse_duration")
	KeyOwner              = NewKey[uuid.UUID]("owner")

	// KeyActiveItem has no codec: item stacks are not persisted.
	KeyActiveItem = NewKey[item.Stack]("active_item")
)

// Limits shared by processors and their tests.
const (
	// MaxFoodLevel is the highest food level a player can have.
	MaxFoodLevel = 20
	// MinHealthScale and MaxHealthScale bound the health scale.
	MinHealthScale = 1.0
	MaxHealthScale = math.MaxFloat32
)

// Built-in traits.
var (
	TraitHealth = NewTrait("health",
		Default(KeyHealth, 20.0),
		Default(KeyMaxHealth, 20.0),
	)
	TraitHealthScale = NewTrait("health_scale", Default(KeyHealthScale, 20.0))
	TraitVelocity    = NewTrait("velocity", Default(KeyVelocity, mgl64.Vec3{}))
	TraitGravity     = NewTrait("gravity", Default(KeyGravity, true))
	TraitGlowing     = NewTrait("glowing", Default(KeyGlowing, false))
	TraitSneaking    = NewTrait("sneaking", Default(KeySneaking, false))
	TraitSprinting   = NewTrait("sprinting", Default(KeySprinting, false))
	TraitFlying      = NewTrait("flying", Default(KeyFlying, false))
	TraitInvisible   = NewTrait("invisibility", Default(KeyInvisible, false))
	TraitFood        = NewTrait("food", Default(KeyFoodLevel, MaxFoodLevel))
	TraitExperience  = NewTrait("experience",
		Default(KeyExperienceLevel, 0),
		Default(KeyExperienceProgress, 0.0),
	)
	TraitGameMode    = NewTrait("game_mode", Default[world.GameMode](KeyGameMode, world.GameModeSurvival))
	TraitDisplayName = NewTrait("display_name", Default(KeyDisplayName, ""))
	TraitAbsorption  = NewTrait("absorption", Default(KeyAbsorption, 0.0))
	TraitFire        = NewTrait("fire", Default(KeyFireDuration, time.Duration(0)))
	TraitAir         = NewTrait("air",
		Default(KeyRemainingAir, 15*time.Second),
		Default(KeyMaxAir, 15*time.Second),
	)
	TraitActiveItem = NewTrait("active_item", Default(KeyActiveItem, item.Stack{}))
	TraitFuse       = NewTrait("fuse", Default(KeyFuseDuration, 4*time.Second))
	TraitTameable   = NewTrait("tameable", Default(KeyOwner, uuid.Nil))
)
