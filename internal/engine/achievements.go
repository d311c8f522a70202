package engine

import "github.com/shopspring/decimal"

// Achievement represents a badge the user can earn.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Earned      bool
}

// AchievementChecker calculates which achievements have been earned from the
// economy and the two histories.
type AchievementChecker struct {
	economy     EconomyState
	records     []CompletionRecord
	redemptions []RedemptionRecord
}

func NewAchievementChecker(economy EconomyState, records []CompletionRecord, redemptions []RedemptionRecord) *AchievementChecker {
	return &AchievementChecker{
		economy:     economy,
		records:     records,
		redemptions: redemptions,
	}
}

// GetAchievements returns all achievements with their earned status.
func (c *AchievementChecker) GetAchievements() []Achievement {
	return []Achievement{
		// Level milestones
		c.levelAchievement("getting_started", "Getting Started", "Reach level 3", "🌿", 3),
		c.levelAchievement("on_the_path", "On the Path", "Reach level 5", "🌳", 5),
		c.levelAchievement("seasoned", "Seasoned", "Reach level 10", "⭐", 10),
		c.levelAchievement("master", "Master", "Reach level 20", "💫", 20),

		// Completion milestones
		c.completionAchievement("first_bounty", "First Bounty", "Complete 1 task", "✓", 1),
		c.completionAchievement("productive", "Productive", "Complete 10 tasks", "📋", 10),
		c.completionAchievement("achiever", "Achiever", "Complete 50 tasks", "🏅", 50),
		c.completionAchievement("powerhouse", "Powerhouse", "Complete 100 tasks", "🏆", 100),

		c.challengeAchievement("daredevil", "Daredevil", "Finish a paid challenge", "😈"),
		c.redemptionAchievement("treat_yourself", "Treat Yourself", "Redeem a reward", "🎁"),
		c.balanceAchievement("saver", "Saver", "Hold 1000 points", "💰", 1000),
	}
}

// CountEarned returns how many achievements have been earned.
func (c *AchievementChecker) CountEarned() int {
	count := 0
	for _, a := range c.GetAchievements() {
		if a.Earned {
			count++
		}
	}
	return count
}

func (c *AchievementChecker) CountTotal() int {
	return len(c.GetAchievements())
}

func (c *AchievementChecker) levelAchievement(id, name, desc, icon string, level int) Achievement {
	earned := c.economy.Level >= level
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func (c *AchievementChecker) completionAchievement(id, name, desc, icon string, count int) Achievement {
	earned := len(c.records) >= count
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func (c *AchievementChecker) challengeAchievement(id, name, desc, icon string) Achievement {
	earned := false
	for _, r := range c.records {
		if r.TaskKind == KindPaidChallenge {
			earned = true
			break
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func (c *AchievementChecker) redemptionAchievement(id, name, desc, icon string) Achievement {
	earned := len(c.redemptions) > 0
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func (c *AchievementChecker) balanceAchievement(id, name, desc, icon string, points int64) Achievement {
	earned := c.economy.TotalPoints.GreaterThanOrEqual(decimal.NewFromInt(points))
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

// Achievements returns a checker over a snapshot of the service's state.
func (s *Service) Achievements() *AchievementChecker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewAchievementChecker(s.economy.State(), s.ledger.Records(), s.rewards.Redemptions())
}
