package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

type RewardCategory string

const (
	RewardVirtual RewardCategory = "virtual"
	RewardReal    RewardCategory = "real"
)

type Reward struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
	Icon        string          `json:"icon"`
	Category    RewardCategory  `json:"category"`
	IsActive    bool            `json:"isActive"`
}

type RedemptionRecord struct {
	ID         string          `json:"id"`
	RewardID   string          `json:"rewardId"`
	RewardName string          `json:"rewardName"`
	Cost       decimal.Decimal `json:"cost"`
	RedeemedAt time.Time       `json:"redeemedAt"`
}

// DefaultRewards seeds a fresh catalog.
func DefaultRewards() []Reward {
	seed := []struct {
		id, name, desc, icon string
		cost                 int64
		cat                  RewardCategory
	}{
		{"1", "Rest day", "Take a day off and recharge", "🏖️", 50, RewardVirtual},
		{"2", "Small treat", "A bubble tea or a favourite snack", "☕", 100, RewardReal},
		{"3", "Movie ticket", "Watch the film you have been waiting for", "🎬", 200, RewardReal},
		{"4", "Nice dinner", "Eat at a restaurant you like", "🍽️", 300, RewardReal},
		{"5", "Shopping voucher", "Buy something small you have wanted", "🛍️", 500, RewardReal},
		{"6", "Achievement badge", "Earn an exclusive badge", "🏆", 1000, RewardVirtual},
	}
	out := make([]Reward, 0, len(seed))
	for _, s := range seed {
		out = append(out, Reward{
			ID:          s.id,
			Name:        s.name,
			Description: s.desc,
			Cost:        decimal.NewFromInt(s.cost),
			Icon:        s.icon,
			Category:    s.cat,
			IsActive:    true,
		})
	}
	return out
}

// RewardCatalog holds the redeemable rewards and the redemption history.
type RewardCatalog struct {
	rewards     []Reward
	redemptions []RedemptionRecord
}

func NewRewardCatalog(rewards []Reward, redemptions []RedemptionRecord) *RewardCatalog {
	return &RewardCatalog{
		rewards:     append([]Reward(nil), rewards...),
		redemptions: append([]RedemptionRecord(nil), redemptions...),
	}
}

func (c *RewardCatalog) Rewards() []Reward {
	return append([]Reward(nil), c.rewards...)
}

func (c *RewardCatalog) Redemptions() []RedemptionRecord {
	return append([]RedemptionRecord(nil), c.redemptions...)
}

func (c *RewardCatalog) Reward(id string) (Reward, bool) {
	if i := c.index(id); i >= 0 {
		return c.rewards[i], true
	}
	return Reward{}, false
}

func (c *RewardCatalog) index(id string) int {
	for i := range c.rewards {
		if c.rewards[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *RewardCatalog) add(r Reward) { c.rewards = append(c.rewards, r) }

func (c *RewardCatalog) replace(r Reward) {
	if i := c.index(r.ID); i >= 0 {
		c.rewards[i] = r
	}
}

func (c *RewardCatalog) remove(id string) (Reward, bool) {
	i := c.index(id)
	if i < 0 {
		return Reward{}, false
	}
	r := c.rewards[i]
	c.rewards = append(c.rewards[:i], c.rewards[i+1:]...)
	return r, true
}

func (c *RewardCatalog) appendRedemption(r RedemptionRecord) {
	c.redemptions = append(c.redemptions, r)
}

func (c *RewardCatalog) removeRedemption(id string) (RedemptionRecord, bool) {
	for i, r := range c.redemptions {
		if r.ID == id {
			c.redemptions = append(c.redemptions[:i], c.redemptions[i+1:]...)
			return r, true
		}
	}
	return RedemptionRecord{}, false
}

type catalogSnapshot struct {
	rewards     []Reward
	redemptions []RedemptionRecord
}

func (c *RewardCatalog) snapshot() catalogSnapshot {
	return catalogSnapshot{rewards: c.Rewards(), redemptions: c.Redemptions()}
}

func (c *RewardCatalog) restore(s catalogSnapshot) {
	c.rewards = s.rewards
	c.redemptions = s.redemptions
}
