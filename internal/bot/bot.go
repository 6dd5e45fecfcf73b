package bot

import (
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/aspireledger/aspire-bot/internal/bot/handlers"
	"github.com/aspireledger/aspire-bot/internal/bot/keyboard"
	apperrors "github.com/aspireledger/aspire-bot/internal/errors"
	"github.com/aspireledger/aspire-bot/internal/idempotency"
	"github.com/aspireledger/aspire-bot/internal/ledger"
	"github.com/aspireledger/aspire-bot/internal/ratelimit"
	"github.com/aspireledger/aspire-bot/internal/state"
	"github.com/aspireledger/aspire-bot/pkg/config"
)

// Bot wraps telebot.Bot with the dependencies required for handling updates.
type Bot struct {
	telebot    *telebot.Bot
	log        *slog.Logger
	cfg        config.Config
	fsm        state.Machine
	drafts     ledger.DraftStore
	sink       ledger.Sink
	router     *Router
	dispatcher *Dispatcher
	keyboard   *keyboard.Builder
	formatter  *ledger.Formatter
	errHandler *apperrors.Handler
}

// New builds a telegram bot instance configured according to the application
// settings. The location controls the date stamped on quick-add drafts.
func New(
	cfg config.Config,
	log *slog.Logger,
	fsm state.Machine,
	drafts ledger.DraftStore,
	sink ledger.Sink,
	access AccessPolicy,
	idempotencyManager idempotency.Manager,
	limiter ratelimit.Limiter,
	loc *time.Location,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Bot.WebhookListen,
			Endpoint: &telebot.WebhookEndpoint{
				PublicURL: cfg.Bot.WebhookURL,
			},
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	formatter := ledger.NewFormatter(cfg.Ledger.Currency)
	kb := keyboard.NewBuilder(formatter, log)
	dispatcher := NewDispatcher(fsm, log)
	router := NewRouter(dispatcher, log)
	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)

	b := &Bot{
		telebot:    tb,
		log:        log,
		cfg:        cfg,
		fsm:        fsm,
		drafts:     drafts,
		sink:       sink,
		router:     router,
		dispatcher: dispatcher,
		keyboard:   kb,
		formatter:  formatter,
		errHandler: errHandler,
	}

	b.setupRouter(access, idempotencyManager, limiter, loc)
	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such
// as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter(
	access AccessPolicy,
	idempotencyManager idempotency.Manager,
	limiter ratelimit.Limiter,
	loc *time.Location,
) {
	if b.router == nil {
		return
	}

	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(AccessMiddleware(access, b.log))
	if limiter != nil {
		b.router.Use(RateLimitMiddleware(limiter, b.cfg.RateLimit.Limit, b.cfg.RateLimit.Window, b.log))
	}
	b.router.Use(IdempotencyMiddleware(idempotencyManager, b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(MetricsMiddleware)

	startHandler := handlers.NewStartHandler(b.fsm, b.drafts, b.keyboard, b.log)
	b.router.RegisterCommand(CommandStart, startHandler)
	b.router.RegisterCommand(CommandStartAlias, startHandler)

	cancelHandler := handlers.NewCancelHandler(b.fsm, b.log)
	b.router.RegisterCommand(CommandCancel, cancelHandler)
	b.router.RegisterCommand(CommandCancelAlias, cancelHandler)

	b.router.RegisterCallback(
		keyboard.ActionPrefix+keyboard.CallbackDataSeparator,
		handlers.NewActionsCallbackHandler(b.fsm, b.drafts, b.formatter, b.keyboard, b.sink, b.log),
	)
	b.router.RegisterCallback(
		keyboard.QuickSaveData,
		handlers.NewQuickSaveCallbackHandler(b.fsm, b.drafts, b.sink, b.log),
	)
	b.router.RegisterCallback(
		keyboard.SaveData,
		handlers.NewSaveCallbackHandler(b.fsm, b.drafts, b.keyboard, b.log),
	)

	b.dispatcher.RegisterStateHandler(
		state.StateIdle,
		handlers.NewQuickAddHandler(b.fsm, b.drafts, b.formatter, b.keyboard, loc, b.log),
	)
	b.dispatcher.RegisterStateHandler(
		state.StateEditing,
		handlers.NewEditingInputHandler(b.fsm, b.drafts, b.log),
	)
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}
