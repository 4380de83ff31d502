// Package tui is the terminal discovery client: a card deck driven by mouse
// drags and arrow keys.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/engine/gesture"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/discovery"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/quota"
)

// Terminal cells are converted to pixels so the swipe threshold keeps its
// meaning: a 100px threshold is ten columns.
const (
	defaultCellWidth  = 10.0
	defaultCellHeight = 20.0
	cardIndent        = 12
)

type QuotaReader interface {
	Snapshot(ctx context.Context, userID string, tier enums.SubscriptionTier) (quota.Snapshot, error)
}

type Plans interface {
	Plans() []model.Plan
	Tier(ctx context.Context, userID string) (enums.SubscriptionTier, error)
	Subscribe(ctx context.Context, userID, planID string) (model.Plan, error)
}

type Dependencies struct {
	Session   *discovery.Session
	Quota     QuotaReader
	Plans     Plans
	Threshold float64
	// CellWidth and CellHeight are the pixel size of one terminal cell.
	CellWidth  float64
	CellHeight float64
}

type Model struct {
	ctx    context.Context
	deps   Dependencies
	styles Styles
	userID string

	view    discovery.View
	snap    *quota.Snapshot
	tier    enums.SubscriptionTier
	match   *model.Candidate
	upgrade bool
	status  string
	err     error
	width   int
	height  int
}

func New(ctx context.Context, deps Dependencies) Model {
	if deps.CellWidth <= 0 {
		deps.CellWidth = defaultCellWidth
	}
	if deps.CellHeight <= 0 {
		deps.CellHeight = defaultCellHeight
	}
	m := Model{
		ctx:    ctx,
		deps:   deps,
		styles: DefaultStyles(),
		tier:   enums.TierFree,
	}
	if deps.Session != nil {
		m.userID = deps.Session.UserID()
		m.view = deps.Session.View()
	}
	m.refreshQuota()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case EventMsg:
		m.handleEvent(discovery.Event(msg))
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.upgrade {
		switch key {
		case "1", "2", "3":
			m.subscribe(int(key[0] - '1'))
			return m, nil
		case "esc", "u":
			m.upgrade = false
			return m, nil
		}
	}

	if m.match != nil {
		switch key {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter", "esc", " ":
			m.dismissMatch()
		}
		return m, nil
	}

	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "left", "h":
		m.swipe(enums.DirectionLeft)
	case "right", "l":
		m.swipe(enums.DirectionRight)
	case "u":
		m.upgrade = true
	}
	return m, nil
}

// dismissMatch closes the match overlay. A session still celebrating
// advances now instead of waiting for its timeout.
func (m *Model) dismissMatch() {
	m.match = nil
	if m.deps.Session == nil {
		return
	}
	m.deps.Session.DismissCelebration()
	m.view = m.deps.Session.View()
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.deps.Session == nil || m.match != nil || m.upgrade {
		return
	}

	var phase gesture.Phase
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		phase = gesture.PhaseStart
	case msg.Action == tea.MouseActionMotion:
		phase = gesture.PhaseMove
	case msg.Action == tea.MouseActionRelease:
		phase = gesture.PhaseEnd
	default:
		return
	}

	res, err := m.deps.Session.Pointer(m.ctx, gesture.MouseEvent{
		Kind: phase,
		X:    float64(msg.X) * m.deps.CellWidth,
		Y:    float64(msg.Y) * m.deps.CellHeight,
	})
	m.applyResult(res, err)
}

func (m *Model) swipe(dir enums.Direction) {
	if m.deps.Session == nil {
		return
	}
	res, err := m.deps.Session.Swipe(m.ctx, dir)
	m.applyResult(res, err)
}

func (m *Model) applyResult(res discovery.Result, err error) {
	m.err = nil
	if err != nil {
		if errors.Is(err, discovery.ErrBusy) {
			m.status = "One moment…"
			return
		}
		m.err = err
		return
	}

	switch res.Kind {
	case discovery.ResultCommitted:
		if res.Direction.IsLike() {
			m.status = "Liked " + res.Candidate.Name
		} else {
			m.status = "Passed on " + res.Candidate.Name
		}
		if res.Matched {
			c := res.Candidate
			m.match = &c
		}
		m.refreshQuota()
	case discovery.ResultDenied:
		m.status = "You're out of likes for today"
		m.upgrade = true
		m.refreshQuota()
	case discovery.ResultSnapBack:
		m.status = ""
	case discovery.ResultExhausted:
		m.status = "No more profiles"
	}
	m.view = m.deps.Session.View()
}

func (m *Model) handleEvent(ev discovery.Event) {
	if m.deps.Session == nil || ev.SessionID != m.deps.Session.ID() {
		return
	}
	if ev.Kind == discovery.EventMatch {
		c := ev.Candidate
		m.match = &c
	}
	m.view = m.deps.Session.View()
}

func (m *Model) subscribe(idx int) {
	if m.deps.Plans == nil {
		return
	}
	plans := m.deps.Plans.Plans()
	if idx < 0 || idx >= len(plans) {
		return
	}
	plan, err := m.deps.Plans.Subscribe(m.ctx, m.userID, string(plans[idx].ID))
	if err != nil {
		m.err = err
		return
	}
	m.upgrade = false
	m.status = fmt.Sprintf("Welcome to %s!", plan.Name)
	m.refreshQuota()
}

func (m *Model) refreshQuota() {
	if m.deps.Quota == nil || m.userID == "" {
		return
	}
	if m.deps.Plans != nil {
		if tier, err := m.deps.Plans.Tier(m.ctx, m.userID); err == nil {
			m.tier = tier
		}
	}
	snap, err := m.deps.Quota.Snapshot(m.ctx, m.userID, m.tier)
	if err != nil {
		m.err = err
		return
	}
	m.snap = &snap
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Roam Romance · Discover"))
	b.WriteString("  ")
	b.WriteString(m.styles.Muted.Render(m.quotaLine()))
	b.WriteString("\n\n")

	switch {
	case m.match != nil:
		b.WriteString(m.styles.Match.Render(fmt.Sprintf("It's a Match!\n\nYou and %s liked each other.", m.match.Name)))
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render("enter: keep swiping"))
	case m.upgrade:
		b.WriteString(m.renderUpgrade())
	case m.view.Current == nil:
		b.WriteString(m.styles.Card.Render("You've seen everyone nearby.\nCheck back later for new people."))
	default:
		b.WriteString(m.renderCard(*m.view.Current))
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.styles.Status.Render(m.status) + "\n")
	}
	if m.err != nil {
		b.WriteString(m.styles.ErrorText.Render("error: "+m.err.Error()) + "\n")
	}
	b.WriteString(m.styles.Help.Render("drag the card or ←/→ to pass/like · u: upgrade · q: quit"))
	return b.String()
}

func (m Model) renderCard(c model.Candidate) string {
	style := m.styles.Card
	stamp := ""
	dx := m.view.Offset.X
	if m.view.Dragging && m.deps.Threshold > 0 {
		switch {
		case dx >= m.deps.Threshold/2:
			style = m.styles.CardLike
			stamp = m.styles.Stamp.Foreground(Mint).Render("LIKE")
		case dx <= -m.deps.Threshold/2:
			style = m.styles.CardPass
			stamp = m.styles.Stamp.Foreground(Rose).Render("NOPE")
		}
	}

	var body strings.Builder
	if stamp != "" {
		body.WriteString(stamp + "\n")
	}
	body.WriteString(m.styles.Name.Render(fmt.Sprintf("%s, %d", c.Name, c.Age)))
	if c.Location != "" {
		body.WriteString("\n" + m.styles.Muted.Render(fmt.Sprintf("%s · %.0f km", c.Location, c.DistanceKM)))
	}
	if c.Bio != "" {
		body.WriteString("\n\n" + c.Bio)
	}
	if len(c.Interests) > 0 {
		body.WriteString("\n\n" + m.styles.Tag.Render(strings.Join(c.Interests, " · ")))
	}
	if photo := c.PrimaryPhoto(); photo != "" {
		body.WriteString("\n\n" + m.styles.Muted.Render(photo))
	}

	indent := cardIndent
	if m.view.Dragging {
		indent += int(dx / m.deps.CellWidth)
	}
	if indent < 0 {
		indent = 0
	}
	return lipgloss.NewStyle().PaddingLeft(indent).Render(style.Render(body.String()))
}

func (m Model) renderUpgrade() string {
	var b strings.Builder
	b.WriteString(m.styles.Name.Render("Get unlimited likes"))
	if m.deps.Plans != nil {
		for i, p := range m.deps.Plans.Plans() {
			line := fmt.Sprintf("\n\n%d. %s · $%.2f/month", i+1, p.Name, p.Price)
			if p.Popular {
				line += " (popular)"
			}
			b.WriteString(line)
			for _, f := range p.Features {
				b.WriteString("\n   " + m.styles.Muted.Render(f))
			}
		}
	}
	b.WriteString("\n\n" + m.styles.Help.Render("1-3: choose plan · esc: back"))
	return m.styles.Upgrade.Render(b.String())
}

func (m Model) quotaLine() string {
	if m.snap == nil {
		return ""
	}
	if m.snap.Unlimited {
		return fmt.Sprintf("%s · unlimited likes", m.tier)
	}
	return fmt.Sprintf("%s · %d/%d likes left · resets %s", m.tier, m.snap.LikesLeft, m.snap.Limit, m.snap.ResetAt.Format("15:04"))
}
