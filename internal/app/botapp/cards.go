package botapp

import (
	"fmt"
	"strings"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	tginfra "github.com/Drakkarus-debug/Roam-Romance-001/internal/infra/telegram"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/quota"
)

func swipeButtons() []tginfra.Button {
	return []tginfra.Button{
		{Text: "✖ Pass", Data: "swipe:left"},
		{Text: "♥ Like", Data: "swipe:right"},
	}
}

func planButtons(plans []model.Plan) []tginfra.Button {
	row := make([]tginfra.Button, 0, len(plans))
	for _, p := range plans {
		row = append(row, tginfra.Button{
			Text: fmt.Sprintf("%s $%.2f", p.Name, p.Price),
			Data: "upgrade:" + string(p.ID),
		})
	}
	return row
}

func formatCandidate(c model.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %d", c.Name, c.Age)
	if c.Location != "" {
		fmt.Fprintf(&b, "\n📍 %s", c.Location)
	}
	if c.DistanceKM > 0 {
		fmt.Fprintf(&b, " · %.0f km away", c.DistanceKM)
	}
	if c.Bio != "" {
		b.WriteString("\n\n" + c.Bio)
	}
	if len(c.Interests) > 0 {
		b.WriteString("\n\n" + strings.Join(c.Interests, " · "))
	}
	if c.Reason != "" {
		b.WriteString("\n\n✨ " + c.Reason)
	}
	return b.String()
}

func formatPlans(plans []model.Plan) string {
	var b strings.Builder
	for i, p := range plans {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s · $%.2f/month", p.Name, p.Price)
		if p.Popular {
			b.WriteString(" (popular)")
		}
		for _, f := range p.Features {
			b.WriteString("\n• " + f)
		}
	}
	return b.String()
}

func formatMatches(records []model.MatchRecord) string {
	if len(records) == 0 {
		return "No matches yet. Keep swiping!"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Your matches (%d):", len(records))
	for _, r := range records {
		fmt.Fprintf(&b, "\n• %s, matched %s", r.Name, r.CreatedAt.Format("Jan 2"))
	}
	return b.String()
}

func formatQuota(tier enums.SubscriptionTier, snap quota.Snapshot) string {
	if snap.Unlimited {
		return fmt.Sprintf("Plan: %s. Likes are unlimited.", tier)
	}
	return fmt.Sprintf("Plan: %s. %d of %d likes left today, resets at %s.",
		tier, snap.LikesLeft, snap.Limit, snap.ResetAt.Format("15:04 MST"))
}
