package domain

type AbilityKind string

const (
	AbilityPassive  AbilityKind = "passive"
	AbilityActive   AbilityKind = "active"
	AbilityUltimate AbilityKind = "ultimate"
)

// Ability is read-only reference data loaded at startup.
type Ability struct {
	ID       string      `json:"id" yaml:"id"`
	Name     string      `json:"name" yaml:"name"`
	Kind     AbilityKind `json:"kind" yaml:"kind"`
	Cost     int         `json:"cost" yaml:"cost"`
	Cooldown int         `json:"cooldown" yaml:"cooldown"`
	Element  Element     `json:"element" yaml:"element"`
	Effects  []Effect    `json:"effects" yaml:"effects"`
}

type EffectKind string

const (
	EffectDamage EffectKind = "damage"
	EffectHeal   EffectKind = "heal"
	EffectStatus EffectKind = "status"
	EffectBuff   EffectKind = "buff"
	EffectDebuff EffectKind = "debuff"
)

type StatusKind string

const (
	StatusBurn   StatusKind = "burn"
	StatusPoison StatusKind = "poison"
	StatusStun   StatusKind = "stun"
	StatusRegen  StatusKind = "regen"
)

// Effect is the closed variant set the battle resolver switches over.
// Fields are variant-scoped:
//
//	damage: Power, Lifesteal
//	heal:   Power
//	status: Status, Chance, Duration, Power (per-turn tick for burn/poison/regen)
//	buff:   Stat, Amount or Multiplier, Duration
//	debuff: Stat, Amount or Multiplier, Duration
type Effect struct {
	Kind       EffectKind `json:"kind" yaml:"kind"`
	Power      int        `json:"power,omitempty" yaml:"power"`
	Lifesteal  float64    `json:"lifesteal,omitempty" yaml:"lifesteal"`
	Status     StatusKind `json:"status,omitempty" yaml:"status"`
	Chance     float64    `json:"chance,omitempty" yaml:"chance"`
	Duration   int        `json:"duration,omitempty" yaml:"duration"`
	Stat       StatName   `json:"stat,omitempty" yaml:"stat"`
	Amount     int        `json:"amount,omitempty" yaml:"amount"`
	Multiplier float64    `json:"multiplier,omitempty" yaml:"multiplier"`
}

type DomainEffectKind string

const (
	DomainAmplify DomainEffectKind = "amplify"
	DomainRegen   DomainEffectKind = "regen"
)

// DomainEffect is a battlefield-wide modifier applied every round to all
// combatants matching Trigger, regardless of whose turn it is.
type DomainEffect struct {
	Name       string           `json:"name" yaml:"name"`
	Kind       DomainEffectKind `json:"kind" yaml:"kind"`
	Trigger    Element          `json:"trigger" yaml:"trigger"` // neutral matches everyone
	Magnitude  float64          `json:"magnitude" yaml:"magnitude"`
	RegenPower int              `json:"regen_power,omitempty" yaml:"regen_power"`
}

// Matches reports whether the effect applies to a combatant of the given element.
func (d DomainEffect) Matches(e Element) bool {
	return d.Trigger == ElementNeutral || d.Trigger == e
}
