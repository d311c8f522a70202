package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhang-san-er/task-tools/internal/engine"
	"github.com/zhang-san-er/task-tools/internal/ui"
)

func newRewardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "Spend points on rewards",
	}
	cmd.AddCommand(
		newRewardsListCmd(),
		newRewardsAddCmd(),
		newRewardsEditCmd(),
		newRewardsRedeemCmd(),
		newRewardsHistoryCmd(),
		newRewardsRefundCmd(),
		newRewardsToggleCmd("enable", true),
		newRewardsToggleCmd("disable", false),
		newRewardsRmCmd(),
	)
	return cmd
}

func rewardArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("reward id is required")
	}
	return nil
}

func resolveReward(svc *engine.Service, ref string) (string, error) {
	var ids []string
	for _, r := range svc.Rewards() {
		ids = append(ids, r.ID)
	}
	return resolvePrefix("reward", strings.TrimSpace(ref), ids)
}

func newRewardsListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the reward catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			balance := svc.Economy().TotalPoints
			fmt.Fprintf(out, "%s  %s\n", ui.Heading(ui.IconGift, "Rewards"), ui.LabelValue("Balance", ui.Points(balance)))
			shown := 0
			for _, r := range svc.Rewards() {
				if !r.IsActive && !all {
					continue
				}
				cost := ui.Gold.Render(r.Cost.String())
				if r.Cost.GreaterThan(balance) {
					cost = ui.Muted.Render(r.Cost.String())
				}
				line := fmt.Sprintf("%s  %s %s  %s  %s", ui.Muted.Render(shortID(r.ID)), r.Icon, r.Name, cost, ui.Dim.Render(string(r.Category)))
				if !r.IsActive {
					line += "  " + ui.Bad.Render("disabled")
				}
				fmt.Fprintln(out, line)
				if r.Description != "" {
					fmt.Fprintln(out, "    "+ui.Dim.Render(r.Description))
				}
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no rewards)"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include disabled rewards")

	return cmd
}

func newRewardsAddCmd() *cobra.Command {
	var (
		costStr string
		desc    string
		icon    string
		isReal  bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a reward to the catalog",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("name is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			cost, err := engine.ParsePoints(costStr)
			if err != nil {
				return err
			}
			cat := engine.RewardVirtual
			if isReal {
				cat = engine.RewardReal
			}
			r, err := svc.AddReward(ctx, engine.RewardInput{
				Name:        strings.Join(args, " "),
				Description: desc,
				Cost:        cost,
				Icon:        icon,
				Category:    cat,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n", ui.Good.Render(ui.IconPlus+" Added"), r.Icon, r.Name, ui.Muted.Render("id "+shortID(r.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&costStr, "cost", "c", "0", "price in points")
	cmd.Flags().StringVarP(&desc, "description", "d", "", "description")
	cmd.Flags().StringVar(&icon, "icon", "", "icon (default 🎁)")
	cmd.Flags().BoolVar(&isReal, "real", false, "a real-world reward rather than a virtual one")

	return cmd
}

func newRewardsEditCmd() *cobra.Command {
	var (
		name    string
		costStr string
		desc    string
		icon    string
		isReal  bool
	)

	cmd := &cobra.Command{
		Use:   "edit <reward>",
		Short: "Change a reward's name, price or details",
		Args:  rewardArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveReward(svc, args[0])
			if err != nil {
				return err
			}
			var cur engine.Reward
			for _, r := range svc.Rewards() {
				if r.ID == id {
					cur = r
				}
			}

			in := engine.RewardInput{
				Name:        cur.Name,
				Description: cur.Description,
				Cost:        cur.Cost,
				Icon:        cur.Icon,
				Category:    cur.Category,
			}
			f := cmd.Flags()
			changed := false
			if f.Changed("name") {
				in.Name = name
				changed = true
			}
			if f.Changed("cost") {
				if in.Cost, err = engine.ParsePoints(costStr); err != nil {
					return err
				}
				changed = true
			}
			if f.Changed("description") {
				in.Description = desc
				changed = true
			}
			if f.Changed("icon") {
				in.Icon = icon
				changed = true
			}
			if f.Changed("real") {
				in.Category = engine.RewardVirtual
				if isReal {
					in.Category = engine.RewardReal
				}
				changed = true
			}
			if !changed {
				return errors.New("nothing to change")
			}

			r, err := svc.UpdateReward(ctx, id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n", ui.Good.Render("Updated"), r.Icon, r.Name, ui.Gold.Render(r.Cost.String()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "new name")
	cmd.Flags().StringVarP(&costStr, "cost", "c", "", "new price in points")
	cmd.Flags().StringVarP(&desc, "description", "d", "", "new description")
	cmd.Flags().StringVar(&icon, "icon", "", "new icon")
	cmd.Flags().BoolVar(&isReal, "real", false, "a real-world reward (--real=false for virtual)")

	return cmd
}

func newRewardsRedeemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redeem <reward>",
		Short: "Buy a reward",
		Args:  rewardArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveReward(svc, args[0])
			if err != nil {
				return err
			}
			rec, err := svc.Redeem(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconGift+" Redeemed"), rec.RewardName, ui.Warn.Render("-"+rec.Cost.String()))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Balance", ui.Points(svc.Economy().TotalPoints)))
			return nil
		},
	}
	return cmd
}

func newRewardsHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show redemptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconGift, "Redemptions"))
			recs := svc.Redemptions()
			if len(recs) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none yet)"))
				return nil
			}
			for i := len(recs) - 1; i >= 0; i-- {
				r := recs[i]
				fmt.Fprintf(out, "%s  %s  %s  %s\n", ui.Muted.Render(shortID(r.ID)), r.RedeemedAt.Format("2006-01-02 15:04"), r.RewardName, ui.Warn.Render("-"+r.Cost.String()))
			}
			return nil
		},
	}
	return cmd
}

func newRewardsRefundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refund <redemption>",
		Short: "Undo a redemption and get its points back",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("redemption id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var ids []string
			for _, r := range svc.Redemptions() {
				ids = append(ids, r.ID)
			}
			id, err := resolvePrefix("redemption", args[0], ids)
			if err != nil {
				return err
			}
			rec, err := svc.DeleteRedemption(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Warn.Render("Refunded"), rec.RewardName, ui.Gold.Render("+"+rec.Cost.String()))
			return nil
		},
	}
	return cmd
}

func newRewardsToggleCmd(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <reward>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a reward",
		Args:  rewardArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveReward(svc, args[0])
			if err != nil {
				return err
			}
			r, err := svc.SetRewardActive(ctx, id, active)
			if err != nil {
				return err
			}
			state := ui.Good.Render("enabled")
			if !r.IsActive {
				state = ui.Bad.Render("disabled")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", r.Icon, r.Name, state)
			return nil
		},
	}
}

func newRewardsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <reward>",
		Short: "Remove a reward from the catalog",
		Args:  rewardArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveReward(svc, args[0])
			if err != nil {
				return err
			}
			r, err := svc.DeleteReward(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Warn.Render("Removed"), r.Icon, r.Name)
			return nil
		},
	}
}
