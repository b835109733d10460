package domain

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// RaritiesByDropOrder lists tiers rarest first, the order the gacha
// cumulative table is built in.
var RaritiesByDropOrder = []Rarity{
	RarityLegendary,
	RarityEpic,
	RarityRare,
	RarityUncommon,
	RarityCommon,
}

var rarityRank = map[Rarity]int{
	RarityCommon:    0,
	RarityUncommon:  1,
	RarityRare:      2,
	RarityEpic:      3,
	RarityLegendary: 4,
}

// Rank orders tiers ascending, common lowest.
func (r Rarity) Rank() int { return rarityRank[r] }

// MaxRarity returns the higher of two tiers.
func MaxRarity(a, b Rarity) Rarity {
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}

type Element string

const (
	ElementFire    Element = "fire"
	ElementWater   Element = "water"
	ElementEarth   Element = "earth"
	ElementAir     Element = "air"
	ElementLight   Element = "light"
	ElementShadow  Element = "shadow"
	ElementNeutral Element = "neutral"
)

type Division string

const (
	DivisionBronze   Division = "bronze"
	DivisionSilver   Division = "silver"
	DivisionGold     Division = "gold"
	DivisionPlatinum Division = "platinum"
	DivisionDiamond  Division = "diamond"
	DivisionMaster   Division = "master"
)

var divisionRank = map[Division]int{
	DivisionBronze:   0,
	DivisionSilver:   1,
	DivisionGold:     2,
	DivisionPlatinum: 3,
	DivisionDiamond:  4,
	DivisionMaster:   5,
}

func (d Division) Rank() int { return divisionRank[d] }

type StatName string

const (
	StatAttack  StatName = "attack"
	StatDefense StatName = "defense"
	StatSpeed   StatName = "speed"
	StatMaxHP   StatName = "max_hp"
)
