package domain

import (
	"time"
)

type Player struct {
	ID          string
	Coins       int
	Gems        int
	Essence     map[Rarity]int
	PityCounter int
	Rating      int
	Teams       map[string][]string
	Completed   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EssenceOf returns the essence balance for a tier, zero when absent.
func (p *Player) EssenceOf(r Rarity) int {
	if p.Essence == nil {
		return 0
	}
	return p.Essence[r]
}

func (p *Player) AddEssence(r Rarity, amount int) {
	if p.Essence == nil {
		p.Essence = make(map[Rarity]int)
	}
	p.Essence[r] += amount
}

type Creature struct {
	ID          string
	OwnerID     string
	TemplateID  string
	Name        string
	Family      string
	Element     Element
	Rarity      Rarity
	Stats       StatBlock
	Passive     []string
	Active      []string
	Ultimate    []string
	Lineage     *Lineage
	Wins        int
	Losses      int
	DamageDone  int
	CollectedAt time.Time
}

type StatBlock struct {
	HP      int `json:"hp"`
	MaxHP   int `json:"max_hp"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
}

// Total is the sum used by fusion bounds checks and roster power display.
func (s StatBlock) Total() int {
	return s.MaxHP + s.Attack + s.Defense + s.Speed
}

// Lineage records the ancestry of a fused creature.
type Lineage struct {
	Generation    int       `json:"generation"`
	ParentAID     string    `json:"parent_a_id"`
	ParentBID     string    `json:"parent_b_id"`
	ParentAFamily string    `json:"parent_a_family"`
	ParentBFamily string    `json:"parent_b_family"`
	CatalystAID   string    `json:"catalyst_a_id"`
	CatalystBID   string    `json:"catalyst_b_id"`
	Mutations     int       `json:"mutations"`
	FusedAt       time.Time `json:"fused_at"`
}

type Ranking struct {
	PlayerID   string
	Rating     int
	Division   Division
	Wins       int
	Losses     int
	Draws      int
	Streak     int
	BestStreak int
	UpdatedAt  time.Time
}

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchInProgress MatchStatus = "in_progress"
	MatchExpired    MatchStatus = "expired"
	MatchCompleted  MatchStatus = "completed"
)

// Terminal reports whether no further status transition is allowed.
func (s MatchStatus) Terminal() bool {
	return s == MatchCompleted || s == MatchExpired
}

type Match struct {
	ID        string
	PlayerA   string
	PlayerB   string
	TeamA     []string
	TeamB     []string
	Async     bool
	Seed      int64
	Battle    *Battle
	Status    MatchStatus
	WinnerID  string
	Rewards   *MatchRewards
	CreatedAt time.Time
	ExpiresAt time.Time
	UpdatedAt time.Time
}

// Participant reports whether playerID is one of the two sides.
func (m *Match) Participant(playerID string) bool {
	return playerID == m.PlayerA || playerID == m.PlayerB
}

type MatchRewards struct {
	WinnerCoins       int `json:"winner_coins"`
	WinnerGems        int `json:"winner_gems"`
	WinnerRatingDelta int `json:"winner_rating_delta"`
	LoserCoins        int `json:"loser_coins"`
	LoserRatingDelta  int `json:"loser_rating_delta"`
}
