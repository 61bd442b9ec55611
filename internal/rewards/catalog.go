package rewards

// Reward is a redeemable catalog item.
type Reward struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

var catalog = []Reward{
	{ID: 1, Description: "Free Car Wash", Points: 500},
	{ID: 2, Description: "$10 Gas Card", Points: 1000},
	{ID: 3, Description: "Oil Change", Points: 2000},
}

// Catalog returns a copy of the reward catalog.
func Catalog() []Reward {
	out := make([]Reward, len(catalog))
	copy(out, catalog)
	return out
}

// LookupReward finds a catalog entry by ID.
func LookupReward(id int) (Reward, bool) {
	for _, r := range catalog {
		if r.ID == id {
			return r, true
		}
	}
	return Reward{}, false
}
