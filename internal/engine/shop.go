package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type RewardInput struct {
	Name        string
	Description string
	Cost        decimal.Decimal
	Icon        string
	Category    RewardCategory
}

func (in RewardInput) validate(op string) (Reward, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return Reward{}, reject(op, ReasonInvalidInput, "%v", err)
	}
	if in.Cost.IsNegative() {
		return Reward{}, reject(op, ReasonInvalidInput, "cost must not be negative")
	}
	cat := in.Category
	if cat == "" {
		cat = RewardVirtual
	}
	if cat != RewardVirtual && cat != RewardReal {
		return Reward{}, reject(op, ReasonInvalidInput, "unknown category %q", cat)
	}
	icon := in.Icon
	if icon == "" {
		icon = "🎁"
	}
	return Reward{
		Name:        name,
		Description: in.Description,
		Cost:        in.Cost.Round(1),
		Icon:        icon,
		Category:    cat,
		IsActive:    true,
	}, nil
}

func (s *Service) Rewards() []Reward {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rewards.Rewards()
}

// Redemptions returns the redemption history, oldest first.
func (s *Service) Redemptions() []RedemptionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rewards.Redemptions()
}

func (s *Service) AddReward(ctx context.Context, in RewardInput) (Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Reward
	err := s.mutate(ctx, storeRewards, func(time.Time) error {
		r, err := in.validate("add reward")
		if err != nil {
			return err
		}
		r.ID = newID()
		s.rewards.add(r)
		out = r
		return nil
	})
	if err != nil {
		return Reward{}, err
	}
	s.log.Printf("reward added id=%s name=%q cost=%s", out.ID, out.Name, out.Cost)
	return out, nil
}

// UpdateReward replaces a reward's details; its id and active flag are kept.
func (s *Service) UpdateReward(ctx context.Context, id string, in RewardInput) (Reward, error) {
	const op = "update reward"

	s.mu.Lock()
	defer s.mu.Unlock()

	var out Reward
	err := s.mutate(ctx, storeRewards, func(time.Time) error {
		cur, ok := s.rewards.Reward(id)
		if !ok {
			return reject(op, ReasonNotFound, "reward %s", id)
		}
		r, err := in.validate(op)
		if err != nil {
			return err
		}
		r.ID = cur.ID
		r.IsActive = cur.IsActive
		s.rewards.replace(r)
		out = r
		return nil
	})
	if err != nil {
		return Reward{}, err
	}
	s.log.Printf("reward updated id=%s", id)
	return out, nil
}

func (s *Service) SetRewardActive(ctx context.Context, id string, active bool) (Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Reward
	err := s.mutate(ctx, storeRewards, func(time.Time) error {
		r, ok := s.rewards.Reward(id)
		if !ok {
			return reject("update reward", ReasonNotFound, "reward %s", id)
		}
		r.IsActive = active
		s.rewards.replace(r)
		out = r
		return nil
	})
	if err != nil {
		return Reward{}, err
	}
	s.log.Printf("reward active id=%s active=%t", id, active)
	return out, nil
}

// DeleteReward removes a reward from the catalog. Past redemptions keep the
// name they were recorded with.
func (s *Service) DeleteReward(ctx context.Context, id string) (Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Reward
	err := s.mutate(ctx, storeRewards, func(time.Time) error {
		r, ok := s.rewards.remove(id)
		if !ok {
			return reject("delete reward", ReasonNotFound, "reward %s", id)
		}
		out = r
		return nil
	})
	if err != nil {
		return Reward{}, err
	}
	s.log.Printf("reward deleted id=%s", id)
	return out, nil
}

// Redeem spends points on a reward and records the redemption.
func (s *Service) Redeem(ctx context.Context, rewardID string) (RedemptionRecord, error) {
	const op = "redeem reward"

	s.mu.Lock()
	defer s.mu.Unlock()

	var rec RedemptionRecord
	err := s.mutate(ctx, storeRewards|storeEconomy, func(now time.Time) error {
		r, ok := s.rewards.Reward(rewardID)
		if !ok {
			return reject(op, ReasonNotFound, "reward %s", rewardID)
		}
		if !r.IsActive {
			return reject(op, ReasonRewardInactive, "")
		}
		if !s.economy.DeductPoints(r.Cost) {
			return reject(op, ReasonInsufficientFunds, "%s costs %s, balance is %s", r.Name, r.Cost, s.economy.TotalPoints())
		}
		rec = RedemptionRecord{
			ID:         newID(),
			RewardID:   r.ID,
			RewardName: r.Name,
			Cost:       r.Cost,
			RedeemedAt: now,
		}
		s.rewards.appendRedemption(rec)
		return nil
	})
	if err != nil {
		return RedemptionRecord{}, err
	}
	s.log.Printf("reward redeemed id=%s reward=%s cost=%s", rec.ID, rec.RewardID, rec.Cost)
	return rec, nil
}

// DeleteRedemption removes a redemption and refunds its cost.
func (s *Service) DeleteRedemption(ctx context.Context, id string) (RedemptionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec RedemptionRecord
	err := s.mutate(ctx, storeRewards|storeEconomy, func(time.Time) error {
		r, ok := s.rewards.removeRedemption(id)
		if !ok {
			return reject("refund redemption", ReasonNotFound, "redemption %s", id)
		}
		s.economy.AddPoints(r.Cost)
		rec = r
		return nil
	})
	if err != nil {
		return RedemptionRecord{}, err
	}
	s.log.Printf("redemption refunded id=%s cost=%s", id, rec.Cost)
	return rec, nil
}

// DeductPoints spends points outside the catalog. It overdraws unless the
// service was configured with StrictBalance.
func (s *Service) DeductPoints(ctx context.Context, amount decimal.Decimal) (EconomyState, error) {
	const op = "spend points"

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(ctx, storeEconomy, func(time.Time) error {
		if amount.IsNegative() {
			return reject(op, ReasonInvalidInput, "amount must not be negative")
		}
		if !s.economy.DeductPoints(amount) {
			return reject(op, ReasonInsufficientFunds, "balance is %s", s.economy.TotalPoints())
		}
		return nil
	})
	if err != nil {
		return EconomyState{}, err
	}
	s.log.Printf("points spent amount=%s balance=%s", amount, s.economy.TotalPoints())
	return s.economy.State(), nil
}

// Economy returns the current points, experience and level.
func (s *Service) Economy() EconomyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.economy.State()
}

// LevelProgress is the percentage towards the next level.
func (s *Service) LevelProgress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.economy.Progress()
}
