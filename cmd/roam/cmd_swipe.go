package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/discovery"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/match"
	profilesvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/profiles"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/tui"
)

var swipeCmd = &cobra.Command{
	Use:   "swipe",
	Short: "Open the discovery deck",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(cmd.Context(), runSwipe)
	},
}

func runSwipe(ctx context.Context, d *device) error {
	u, err := d.currentUser(ctx)
	if err != nil {
		return err
	}
	catalogue, err := loadCatalogue()
	if err != nil {
		return err
	}

	relay := tui.NewRelay()
	registry := discovery.NewRegistry(discovery.RegistryDependencies{
		Loader:    profilesvc.NewService(catalogue, nil, nil, appLog),
		Gate:      d.gate,
		Roller:    match.NewRoller(cfg.Engine.MatchProbability, nil),
		Tiers:     d.plans,
		Listeners: []discovery.Listener{d.matches, relay},
		Logger:    appLog,
	}, discovery.Config{
		SwipeThreshold:     cfg.Engine.SwipeThreshold,
		ExitDelay:          cfg.Engine.ExitDelay,
		CelebrationTimeout: cfg.Engine.CelebrationTimeout,
	})
	defer registry.CloseAll()

	session, err := registry.Start(ctx, u.ID, cfg.Engine.Timezone)
	if err != nil {
		return fmt.Errorf("start discovery: %w", err)
	}
	appLog.Info("discovery started", zap.String("user_id", u.ID), zap.String("session_id", session.ID()))

	m := tui.New(ctx, tui.Dependencies{
		Session:   session,
		Quota:     d.gate,
		Plans:     d.plans,
		Threshold: cfg.Engine.SwipeThreshold,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	relay.Attach(p)
	defer relay.Close()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run deck: %w", err)
	}
	return nil
}

func loadCatalogue() ([]model.Candidate, error) {
	if cfg.Engine.CataloguePath != "" {
		return profilesvc.LoadCatalogueFile(cfg.Engine.CataloguePath)
	}
	return profilesvc.DefaultCatalogue()
}
