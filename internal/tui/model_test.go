package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/infra/kvstore"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/discovery"
	entsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/entitlements"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/match"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/profiles"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/quota"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/users"
)

type fixture struct {
	kv     *kvstore.Memory
	userID string
	gate   *quota.Gate
	ents   *entsvc.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := kvstore.NewMemory()
	device := users.NewDeviceStore(kv)
	user, err := device.SignIn(context.Background(), "Riley", "riley@example.com")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return &fixture{
		kv:     kv,
		userID: user.ID,
		gate:   quota.NewGate(quota.NewLocalStore(kv, nil), quota.Config{}, nil),
		ents:   entsvc.NewService(device),
	}
}

func (f *fixture) model(t *testing.T, id string, sample float64) Model {
	t.Helper()
	catalogue, err := profiles.DefaultCatalogue()
	if err != nil {
		t.Fatalf("catalogue: %v", err)
	}
	session, err := discovery.NewSession(id, f.userID, catalogue, discovery.Dependencies{
		Gate:   f.gate,
		Roller: match.NewRoller(0.2, match.NewFixed(sample)),
		Tiers:  f.ents,
	}, discovery.Config{SwipeThreshold: 100})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return New(context.Background(), Dependencies{
		Session:   session,
		Quota:     f.gate,
		Plans:     f.ents,
		Threshold: 100,
	})
}

func newTestModel(t *testing.T, sample float64) Model {
	t.Helper()
	return newFixture(t).model(t, "s1", sample)
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return out
}

func drag(t *testing.T, m Model, fromX, toX int) Model {
	t.Helper()
	m = update(t, m, tea.MouseMsg{X: fromX, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{X: toX, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	return update(t, m, tea.MouseMsg{X: toX, Y: 10, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
}

func TestMouseDragPastThresholdLikes(t *testing.T) {
	m := newTestModel(t, 0.99)

	m = update(t, m, tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{X: 17, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if !m.view.Dragging || !strings.Contains(m.View(), "LIKE") {
		t.Fatalf("expected LIKE stamp while dragging right")
	}
	m = update(t, m, tea.MouseMsg{X: 25, Y: 10, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if m.view.Cursor != 1 {
		t.Fatalf("unexpected cursor: got %d want 1", m.view.Cursor)
	}
	if !strings.HasPrefix(m.status, "Liked") {
		t.Fatalf("unexpected status: %q", m.status)
	}
	if m.snap == nil || m.snap.LikesLeft != 4 {
		t.Fatalf("unexpected quota snapshot: %+v", m.snap)
	}
}

func TestShortDragSnapsBack(t *testing.T) {
	m := newTestModel(t, 0.99)

	m = drag(t, m, 10, 15)
	if m.view.Cursor != 0 || m.view.Dragging {
		t.Fatalf("short drag must snap back: %+v", m.view)
	}
	if m.snap.LikesLeft != 5 {
		t.Fatalf("snap back must not use quota: %d", m.snap.LikesLeft)
	}
}

func TestSixthLikeOpensUpgradeAndPlanUnlocks(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, "s1", 0.99)

	for i := 0; i < 5; i++ {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	}
	if m.view.Current != nil {
		t.Fatalf("catalogue should be exhausted after five likes")
	}
	if !strings.Contains(m.View(), "seen everyone") {
		t.Fatalf("expected empty state")
	}

	// a fresh deck on the same device keeps today's count
	fresh := f.model(t, "s2", 0.99)
	fresh = update(t, fresh, tea.KeyMsg{Type: tea.KeyRight})
	if !fresh.upgrade || !strings.Contains(fresh.View(), "Roam Gold") {
		t.Fatalf("expected upgrade panel after the sixth like")
	}

	fresh = update(t, fresh, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	if fresh.upgrade || fresh.tier != enums.TierGold {
		t.Fatalf("expected gold tier, got %s (upgrade=%v err=%v)", fresh.tier, fresh.upgrade, fresh.err)
	}
	fresh = update(t, fresh, tea.KeyMsg{Type: tea.KeyRight})
	if fresh.view.Cursor != 1 || !fresh.snap.Unlimited {
		t.Fatalf("paid like must commit: cursor=%d snap=%+v", fresh.view.Cursor, fresh.snap)
	}
}

func TestMatchOverlayBlocksUntilDismissed(t *testing.T) {
	m := newTestModel(t, 0.0)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.match == nil || !strings.Contains(m.View(), "It's a Match!") {
		t.Fatalf("expected match overlay")
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.view.Cursor != 1 {
		t.Fatalf("swipes must be ignored under the overlay, cursor=%d", m.view.Cursor)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.match != nil {
		t.Fatalf("enter must dismiss the overlay")
	}
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func TestRelayDeliversInOrder(t *testing.T) {
	relay := NewRelay()
	relay.OnEvent(discovery.Event{Kind: discovery.EventCommit})

	sender := &recordingSender{}
	relay.Attach(sender)
	kinds := []discovery.EventKind{discovery.EventCommit, discovery.EventMatch, discovery.EventAdvanced, discovery.EventExhausted}
	for _, k := range kinds {
		relay.OnEvent(discovery.Event{Kind: k})
	}

	deadline := time.Now().Add(2 * time.Second)
	for sender.count() < len(kinds) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	relay.Close()
	relay.OnEvent(discovery.Event{Kind: discovery.EventCommit})

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.msgs) != len(kinds) {
		t.Fatalf("unexpected delivered count: got %d want %d", len(sender.msgs), len(kinds))
	}
	for i, msg := range sender.msgs {
		if discovery.Event(msg.(EventMsg)).Kind != kinds[i] {
			t.Fatalf("unexpected event #%d: %v", i, msg)
		}
	}
}
