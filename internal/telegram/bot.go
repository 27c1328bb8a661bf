package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Rinde17/investerra-app/internal/market"
	"github.com/Rinde17/investerra-app/internal/metrics"
	"github.com/Rinde17/investerra-app/internal/ratelimit"
	"github.com/Rinde17/investerra-app/internal/service"
)

const surface = "telegram"

type BotConfig struct {
	Token             string
	Debug             bool
	RequestsPerMinute int
}

type Bot struct {
	api            *tgbotapi.BotAPI
	userService    service.UserService
	terrainService service.TerrainService
	prices         market.PriceEstimator
	logger         *zap.Logger
	metrics        *metrics.Metrics
	handler        *Handler
	rateLimiter    *ratelimit.Limiter
	wg             sync.WaitGroup

	// send delivers an HTML message; replaced in tests.
	send func(chatID int64, text string) error
}

func New(cfg BotConfig, userSvc service.UserService, terrainSvc service.TerrainService, prices market.PriceEstimator, logger *zap.Logger, m *metrics.Metrics) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	api.Debug = cfg.Debug

	bot := &Bot{
		api:            api,
		userService:    userSvc,
		terrainService: terrainSvc,
		prices:         prices,
		logger:         logger,
		metrics:        m,
		rateLimiter: ratelimit.New(ratelimit.Config{
			RequestsPerMinute: cfg.RequestsPerMinute,
		}),
	}
	bot.send = bot.sendHTML
	bot.handler = NewHandler(bot)

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
	)

	return bot, nil
}

func (b *Bot) Run(ctx context.Context) error {
	defer b.rateLimiter.Stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopping, waiting for handlers to finish")
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			b.logger.Info("all handlers finished")
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.wg.Add(1)
			go func(upd tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	startTime := time.Now()
	route := routeOf(update.Message)

	defer func() {
		if r := recover(); r != nil {
			chatID := int64(0)
			if update.Message != nil && update.Message.Chat != nil {
				chatID = update.Message.Chat.ID
			}
			b.logger.Error("panic in update handler",
				zap.Any("panic", r),
				zap.Int64("chat_id", chatID),
			)
			b.metrics.RecordRequest(surface, route, "panic", time.Since(startTime))
		}
	}()

	b.handler.HandleMessage(ctx, update.Message)

	b.metrics.RecordRequest(surface, route, "processed", time.Since(startTime))
}

// routeOf keeps metric label cardinality bounded.
func routeOf(msg *tgbotapi.Message) string {
	if msg == nil || !msg.IsCommand() {
		return "text"
	}
	switch cmd := msg.Command(); cmd {
	case "start", "help", "analyze", "terrains", "show", "delete", "reanalyze", "price":
		return cmd
	default:
		return "unknown"
	}
}

func (b *Bot) Send(chatID int64, text string) error {
	if b.send == nil {
		return nil
	}
	return b.send(chatID, text)
}

func (b *Bot) sendHTML(chatID int64, text string) error {
	if b.api == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendTyping(chatID int64) {
	if b.api == nil {
		return
	}
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	b.api.Send(action)
}

func (b *Bot) RecordRateLimitHit() {
	b.metrics.RecordRateLimitHit(surface)
}
