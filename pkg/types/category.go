package types

type ItemCategory string

const (
	CategoryFood     ItemCategory = "food"
	CategoryWater    ItemCategory = "water"
	CategoryMedicine ItemCategory = "medicine"
	CategoryClothing ItemCategory = "clothing"
	CategoryShelter  ItemCategory = "shelter"
	CategoryHygiene  ItemCategory = "hygiene"
	CategoryBaby     ItemCategory = "baby"
	CategoryOther    ItemCategory = "other"
)

// Related categories that can partially satisfy each other. Anything not
// listed here and not identical is treated as unrelated.
var relatedCategories = map[ItemCategory][]ItemCategory{
	CategoryFood:     {CategoryWater, CategoryBaby},
	CategoryWater:    {CategoryFood, CategoryHygiene},
	CategoryMedicine: {CategoryHygiene, CategoryBaby},
	CategoryClothing: {CategoryShelter, CategoryBaby},
	CategoryShelter:  {CategoryClothing},
	CategoryHygiene:  {CategoryMedicine, CategoryWater, CategoryBaby},
	CategoryBaby:     {CategoryFood, CategoryHygiene, CategoryClothing, CategoryMedicine},
}

const (
	CompatibilitySame      = 1.0
	CompatibilityRelated   = 0.6
	CompatibilityOther     = 0.3
	CompatibilityUnrelated = 0.1
)

// Compatibility scores how well an item of category a satisfies a need of
// category b. The table is symmetric.
func Compatibility(a, b ItemCategory) float64 {
	if a == "" || b == "" {
		return CompatibilityOther
	}

	if a == b {
		return CompatibilitySame
	}

	if a == CategoryOther || b == CategoryOther {
		return CompatibilityOther
	}

	for _, r := range relatedCategories[a] {
		if r == b {
			return CompatibilityRelated
		}
	}

	return CompatibilityUnrelated
}
