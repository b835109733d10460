package domain

type BattlePhase string

const (
	BattleNotStarted BattlePhase = "not_started"
	BattleInProgress BattlePhase = "in_progress"
	BattleComplete   BattlePhase = "complete"
)

type BattleWinner string

const (
	WinnerNone  BattleWinner = ""
	WinnerTeamA BattleWinner = "team_a"
	WinnerTeamB BattleWinner = "team_b"
	WinnerDraw  BattleWinner = "draw"
)

const (
	TeamA = 0
	TeamB = 1
)

// Combatant is the in-battle snapshot of a creature. It is mutated turn by
// turn and never written back to the creature aggregate directly.
type Combatant struct {
	CreatureID string           `json:"creature_id"`
	Name       string           `json:"name"`
	Team       int              `json:"team"`
	Position   int              `json:"position"`
	Element    Element          `json:"element"`
	HP         int              `json:"hp"`
	MaxHP      int              `json:"max_hp"`
	Attack     int              `json:"attack"`
	Defense    int              `json:"defense"`
	Speed      int              `json:"speed"`
	Energy     int              `json:"energy"`
	Abilities  []Ability        `json:"abilities"`
	Cooldowns  map[string]int   `json:"cooldowns,omitempty"`
	Statuses   []ActiveStatus   `json:"statuses,omitempty"`
	Modifiers  []ActiveModifier `json:"modifiers,omitempty"`
}

func (c *Combatant) Alive() bool { return c.HP > 0 }

type ActiveStatus struct {
	Kind      StatusKind `json:"kind"`
	TurnsLeft int        `json:"turns_left"`
	Power     int        `json:"power"`
}

type ActiveModifier struct {
	Stat       StatName `json:"stat"`
	Amount     int      `json:"amount,omitempty"`
	Multiplier float64  `json:"multiplier,omitempty"`
	TurnsLeft  int      `json:"turns_left"` // 0 means permanent (passives)
	Permanent  bool     `json:"permanent,omitempty"`
	Debuff     bool     `json:"debuff,omitempty"`
}

type Battle struct {
	ID            string           `json:"id"`
	Seed          int64            `json:"seed"`
	Phase         BattlePhase      `json:"phase"`
	Turn          int              `json:"turn"`
	Order         []int            `json:"order"`
	Cursor        int              `json:"cursor"`
	Combatants    []Combatant      `json:"combatants"`
	DomainEffects []DomainEffect   `json:"domain_effects,omitempty"`
	Log           []BattleLogEntry `json:"log"`
	IsComplete    bool             `json:"is_complete"`
	Winner        BattleWinner     `json:"winner,omitempty"`
}

// BattleLogEntry captures one resolved action. Together with the initial
// state and the seed it is sufficient to replay the battle outcome.
type BattleLogEntry struct {
	Turn      int            `json:"turn"`
	ActorID   string         `json:"actor_id"`
	AbilityID string         `json:"ability_id,omitempty"`
	Skipped   bool           `json:"skipped,omitempty"`
	Targets   []TargetResult `json:"targets,omitempty"`
}

type TargetResult struct {
	CreatureID    string     `json:"creature_id"`
	Damage        int        `json:"damage,omitempty"`
	Healing       int        `json:"healing,omitempty"`
	StatusApplied StatusKind `json:"status_applied,omitempty"`
	BuffStat      StatName   `json:"buff_stat,omitempty"`
	DebuffStat    StatName   `json:"debuff_stat,omitempty"`
	Missed        bool       `json:"missed,omitempty"`
	Critical      bool       `json:"critical,omitempty"`
	Defeated      bool       `json:"defeated,omitempty"`
}
