package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/quota"
)

var (
	loginName    string
	loginEmail   string
	matchesLimit int
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in on this device",
	Long: `Signs in on this device. Signing in again with the same name keeps your
account; a different name starts a new one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(cmd.Context(), func(ctx context.Context, d *device) error {
			u, err := d.users.SignIn(ctx, loginName, strings.TrimSpace(loginEmail))
			if err != nil {
				return err
			}
			appLog.Info("signed in", zap.String("user_id", u.ID))
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", u.Name)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of this device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(cmd.Context(), func(ctx context.Context, d *device) error {
			if err := d.users.SignOut(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		})
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List your matches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(cmd.Context(), func(ctx context.Context, d *device) error {
			u, err := d.currentUser(ctx)
			if err != nil {
				return err
			}
			list, err := d.matches.List(ctx, u.ID, matchesLimit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No matches yet. Keep swiping!")
				return nil
			}
			fmt.Fprintf(out, "Your matches (%d):\n", len(list))
			for _, m := range list {
				fmt.Fprintf(out, "  %s  %s\n", m.CreatedAt.Local().Format("Jan 2 15:04"), m.Name)
			}
			return nil
		})
	},
}

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show today's likes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(cmd.Context(), func(ctx context.Context, d *device) error {
			u, err := d.currentUser(ctx)
			if err != nil {
				return err
			}
			tier, err := d.plans.Tier(ctx, u.ID)
			if err != nil {
				return err
			}
			snap, err := d.gate.Snapshot(ctx, u.ID, tier)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describeQuota(string(tier), snap))
			return nil
		})
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade <plan>",
	Short: "Switch to a paid plan (plus, gold or platinum)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(cmd.Context(), func(ctx context.Context, d *device) error {
			u, err := d.currentUser(ctx)
			if err != nil {
				return err
			}
			plan, err := d.plans.Subscribe(ctx, u.ID, strings.ToLower(args[0]))
			if err != nil {
				return err
			}
			appLog.Info("subscription changed", zap.String("user_id", u.ID), zap.String("plan", string(plan.ID)))
			fmt.Fprintf(cmd.OutOrStdout(), "You're on %s now. Enjoy unlimited likes!\n", plan.Name)
			return nil
		})
	},
}

func describeQuota(tier string, snap quota.Snapshot) string {
	if snap.Unlimited {
		return fmt.Sprintf("Plan: %s. Unlimited likes (%d used today).", tier, snap.Used)
	}
	return fmt.Sprintf("Plan: %s. %d/%d likes left today, resets %s.",
		tier, snap.LikesLeft, snap.Limit, snap.ResetAt.Local().Format("Jan 2 15:04"))
}
