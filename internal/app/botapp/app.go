package botapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/app/stack"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/config"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	tginfra "github.com/Drakkarus-debug/Roam-Romance-001/internal/infra/telegram"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/discovery"
	entsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/entitlements"
)

const (
	eventSendTimeout = 10 * time.Second

	helpText       = "Send /discover to start swiping, /matches to see your matches, /plans to upgrade."
	exhaustedText  = "You've seen everyone nearby. Check back later for new people."
	noSessionText  = "Your discovery session has ended. Send /discover to start again."
	busyText       = "Hold on, the previous card is still leaving."
	upgradeText    = "You've used all your free likes for today. Upgrade for unlimited likes:"
	unknownCmdText = "Unknown command. " + helpText
)

// Messenger is the part of the telegram bot the app talks to.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, rows ...[]tginfra.Button) error
	SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, rows ...[]tginfra.Button) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

type App struct {
	cfg    config.Config
	logger *zap.Logger
	stack  *stack.Stack
	bot    *tginfra.Bot
	out    Messenger

	mu sync.Mutex
	// userByTG caches telegram id -> user id; chatByUser routes timer-driven
	// events back to the chat that opened the session.
	userByTG   map[int64]string
	chatByUser map[string]int64
}

func newApp(cfg config.Config, logger *zap.Logger, out Messenger) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		out:        out,
		userByTG:   make(map[int64]string),
		chatByUser: make(map[string]int64),
	}
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	app := newApp(cfg, logger, nil)
	if strings.TrimSpace(cfg.Bot.Token) != "" {
		bot, err := tginfra.NewBot(cfg.Bot.Token)
		if err != nil {
			return nil, fmt.Errorf("init telegram bot: %w", err)
		}
		app.bot = bot
		app.out = bot
	} else {
		logger.Warn("BOT_TOKEN is empty, telegram listener disabled")
	}

	st, err := stack.New(ctx, cfg, logger, stack.Options{
		Listeners: []discovery.Listener{discovery.ListenerFunc(app.onEvent)},
	})
	if err != nil {
		return nil, fmt.Errorf("build discovery stack: %w", err)
	}
	app.stack = st
	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	if err := a.stack.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.stack.Stop(stopCtx); err != nil {
			a.logger.Warn("stop discovery stack", zap.Error(err))
		}
	}()

	a.logger.Info("bot app started", zap.String("username", a.bot.Username()))
	if a.bot == nil {
		<-ctx.Done()
		a.logger.Info("bot app stopped")
		return nil
	}

	err := a.bot.Listen(ctx, tginfra.Handlers{
		OnCommand:  a.handleCommand,
		OnCallback: a.handleCallback,
	})
	if err == nil || errors.Is(err, context.Canceled) {
		a.logger.Info("bot app stopped")
		return nil
	}
	return err
}

func (a *App) Close() {
	if a.stack == nil {
		return
	}
	if err := a.stack.Close(); err != nil {
		a.logger.Warn("close discovery stack", zap.Error(err))
	}
}

func (a *App) handleCommand(ctx context.Context, update tginfra.CommandUpdate) error {
	if a.out == nil {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(update.Command)) {
	case "start", "discover":
		userID, err := a.resolveUser(ctx, update.UserID, update.Name)
		if err != nil {
			return err
		}
		return a.startSession(ctx, update.ChatID, userID)
	case "matches":
		userID, err := a.resolveUser(ctx, update.UserID, update.Name)
		if err != nil {
			return err
		}
		return a.sendMatches(ctx, update.ChatID, userID)
	case "quota":
		userID, err := a.resolveUser(ctx, update.UserID, update.Name)
		if err != nil {
			return err
		}
		return a.sendQuota(ctx, update.ChatID, userID)
	case "plans":
		return a.out.SendText(ctx, update.ChatID, formatPlans(a.stack.Entitlements.Plans()), planButtons(a.stack.Entitlements.Plans()))
	case "upgrade":
		userID, err := a.resolveUser(ctx, update.UserID, update.Name)
		if err != nil {
			return err
		}
		return a.subscribe(ctx, update.ChatID, userID, update.Args)
	case "help":
		return a.out.SendText(ctx, update.ChatID, helpText)
	default:
		return a.out.SendText(ctx, update.ChatID, unknownCmdText)
	}
}

func (a *App) handleCallback(ctx context.Context, update tginfra.CallbackUpdate) error {
	if a.out == nil {
		return nil
	}

	action, arg, _ := strings.Cut(strings.TrimSpace(update.Data), ":")
	userID, err := a.resolveUser(ctx, update.UserID, update.Name)
	if err != nil {
		return err
	}

	switch action {
	case "swipe":
		dir, ok := enums.ParseDirection(arg)
		if !ok {
			return a.out.AnswerCallback(ctx, update.CallbackID, "Unknown action")
		}
		return a.swipe(ctx, update, userID, dir)
	case "celebrate":
		session, err := a.stack.Registry.Get(userID)
		if err != nil || !session.DismissCelebration() {
			return a.out.AnswerCallback(ctx, update.CallbackID, "")
		}
		return a.out.AnswerCallback(ctx, update.CallbackID, "Keep swiping!")
	case "upgrade":
		if err := a.out.AnswerCallback(ctx, update.CallbackID, ""); err != nil {
			return err
		}
		return a.subscribe(ctx, update.ChatID, userID, arg)
	default:
		return a.out.AnswerCallback(ctx, update.CallbackID, "Unknown action")
	}
}

func (a *App) swipe(ctx context.Context, update tginfra.CallbackUpdate, userID string, dir enums.Direction) error {
	session, err := a.stack.Registry.Get(userID)
	if err != nil {
		if err := a.out.AnswerCallback(ctx, update.CallbackID, ""); err != nil {
			return err
		}
		return a.out.SendText(ctx, update.ChatID, noSessionText)
	}

	a.rememberChat(userID, update.ChatID)
	res, err := session.Swipe(ctx, dir)
	switch {
	case errors.Is(err, discovery.ErrBusy):
		return a.out.AnswerCallback(ctx, update.CallbackID, busyText)
	case errors.Is(err, discovery.ErrClosed):
		if err := a.out.AnswerCallback(ctx, update.CallbackID, ""); err != nil {
			return err
		}
		return a.out.SendText(ctx, update.ChatID, noSessionText)
	case err != nil:
		a.logger.Error("telegram swipe failed", zap.String("user_id", userID), zap.Error(err))
		return a.out.AnswerCallback(ctx, update.CallbackID, "Something went wrong, try again")
	}

	switch res.Kind {
	case discovery.ResultDenied:
		if err := a.out.AnswerCallback(ctx, update.CallbackID, "Out of likes"); err != nil {
			return err
		}
		plans := a.stack.Entitlements.Plans()
		return a.out.SendText(ctx, update.ChatID, upgradeText+"\n\n"+formatPlans(plans), planButtons(plans))
	case discovery.ResultExhausted:
		if err := a.out.AnswerCallback(ctx, update.CallbackID, ""); err != nil {
			return err
		}
		return a.out.SendText(ctx, update.ChatID, exhaustedText)
	default:
		text := "Passed"
		if dir.IsLike() {
			text = "Liked"
		}
		return a.out.AnswerCallback(ctx, update.CallbackID, text)
	}
}

func (a *App) startSession(ctx context.Context, chatID int64, userID string) error {
	a.rememberChat(userID, chatID)
	session, err := a.stack.Registry.Start(ctx, userID, a.cfg.Engine.Timezone)
	if err != nil {
		return fmt.Errorf("start discovery session: %w", err)
	}
	return a.sendCard(ctx, chatID, session.View())
}

func (a *App) sendCard(ctx context.Context, chatID int64, view discovery.View) error {
	if view.Current == nil {
		return a.out.SendText(ctx, chatID, exhaustedText)
	}
	caption := formatCandidate(*view.Current)
	if photo := view.Current.PrimaryPhoto(); photo != "" {
		return a.out.SendPhoto(ctx, chatID, photo, caption, swipeButtons())
	}
	return a.out.SendText(ctx, chatID, caption, swipeButtons())
}

func (a *App) sendMatches(ctx context.Context, chatID int64, userID string) error {
	records, err := a.stack.Matches.List(ctx, userID, 0)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	return a.out.SendText(ctx, chatID, formatMatches(records))
}

func (a *App) sendQuota(ctx context.Context, chatID int64, userID string) error {
	tier, err := a.stack.Entitlements.Tier(ctx, userID)
	if err != nil {
		return err
	}
	snap, err := a.stack.Gate.In(a.cfg.Engine.Timezone).Snapshot(ctx, userID, tier)
	if err != nil {
		return fmt.Errorf("quota snapshot: %w", err)
	}
	return a.out.SendText(ctx, chatID, formatQuota(tier, snap))
}

func (a *App) subscribe(ctx context.Context, chatID int64, userID, planID string) error {
	plan, err := a.stack.Entitlements.Subscribe(ctx, userID, strings.TrimSpace(planID))
	switch {
	case errors.Is(err, entsvc.ErrUnknownPlan), errors.Is(err, entsvc.ErrValidation):
		plans := a.stack.Entitlements.Plans()
		return a.out.SendText(ctx, chatID, "Pick one of the plans:\n\n"+formatPlans(plans), planButtons(plans))
	case err != nil:
		return fmt.Errorf("subscribe: %w", err)
	}
	return a.out.SendText(ctx, chatID, fmt.Sprintf("You're on %s now. Enjoy unlimited likes!", plan.Name))
}

// onEvent runs after the session lock is released, on the update loop for
// immediate advances and on a timer goroutine for delayed ones.
func (a *App) onEvent(ev discovery.Event) {
	if a.out == nil {
		return
	}
	chatID, ok := a.chatFor(ev.UserID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventSendTimeout)
	defer cancel()

	var err error
	switch ev.Kind {
	case discovery.EventMatch:
		var rows [][]tginfra.Button
		if a.cfg.Engine.CelebrationTimeout > 0 {
			rows = append(rows, []tginfra.Button{{Text: "Keep swiping", Data: "celebrate:dismiss"}})
		}
		err = a.out.SendText(ctx, chatID, fmt.Sprintf("It's a match! You and %s liked each other.", ev.Candidate.Name), rows...)
	case discovery.EventAdvanced:
		session, getErr := a.stack.Registry.Get(ev.UserID)
		if getErr != nil || session.ID() != ev.SessionID {
			return
		}
		view := session.View()
		if view.Current == nil {
			return
		}
		err = a.sendCard(ctx, chatID, view)
	case discovery.EventExhausted:
		err = a.out.SendText(ctx, chatID, exhaustedText)
	}
	if err != nil {
		a.logger.Warn("telegram event delivery failed",
			zap.String("user_id", ev.UserID),
			zap.String("event", string(ev.Kind)),
			zap.Error(err),
		)
	}
}

func (a *App) resolveUser(ctx context.Context, telegramID int64, name string) (string, error) {
	a.mu.Lock()
	userID, ok := a.userByTG[telegramID]
	a.mu.Unlock()
	if ok {
		return userID, nil
	}

	res, err := a.stack.Auth.LoginTelegramUser(ctx, telegramID, name)
	if err != nil {
		return "", fmt.Errorf("login telegram user: %w", err)
	}

	a.mu.Lock()
	a.userByTG[telegramID] = res.User.ID
	a.mu.Unlock()
	return res.User.ID, nil
}

func (a *App) rememberChat(userID string, chatID int64) {
	a.mu.Lock()
	a.chatByUser[userID] = chatID
	a.mu.Unlock()
}

func (a *App) chatFor(userID string) (int64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	chatID, ok := a.chatByUser[userID]
	return chatID, ok
}
