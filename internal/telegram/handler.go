package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Rinde17/investerra-app/internal/domain"
	"github.com/Rinde17/investerra-app/internal/service"
)

// telegram rejects messages longer than this
const maxMessageLength = 4096

const genericError = "Something went wrong. Please try again later."

type Handler struct {
	bot *Bot
}

func NewHandler(bot *Bot) *Handler {
	return &Handler{bot: bot}
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	h.bot.logger.Info("received message",
		zap.Int64("user_id", msg.From.ID),
		zap.String("username", msg.From.UserName),
		zap.Bool("is_command", msg.IsCommand()),
	)

	if !msg.IsCommand() {
		h.bot.Send(msg.Chat.ID, "Send /help to see what I can do.")
		return
	}

	switch msg.Command() {
	case "start":
		h.handleStart(ctx, msg)
	case "help":
		h.handleHelp(ctx, msg)
	case "analyze":
		h.handleAnalyze(ctx, msg)
	case "terrains":
		h.handleTerrains(ctx, msg)
	case "show":
		h.handleShow(ctx, msg)
	case "delete":
		h.handleDelete(ctx, msg)
	case "reanalyze":
		h.handleReanalyze(ctx, msg)
	case "price":
		h.handlePrice(ctx, msg)
	default:
		h.bot.Send(msg.Chat.ID, "Unknown command. Use /help.")
	}
}

func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if _, ok := h.owner(ctx, msg); !ok {
		return
	}

	h.bot.Send(msg.Chat.ID, "Welcome to Investerra! Send the figures of a plot of land and I will estimate whether it is worth buying.\n\nUse /help to see the commands.")
}

func (h *Handler) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	helpText := `<b>Commands:</b>

/analyze surface price city zip [viabilise] - Analyse a terrain
/terrains - List your terrains
/show N - Full analysis of terrain N
/reanalyze N - Recompute terrain N with today's market
/delete N - Delete terrain N
/price city zip - Average land price per m²

<b>Example:</b>
/analyze 1200 85000 Saint-Émilion 33330 viabilise

Surface is in m², price in euros. Add "viabilise" when the plot is already serviced (water, power, sewage).`

	h.bot.Send(msg.Chat.ID, helpText)
}

func (h *Handler) handleAnalyze(ctx context.Context, msg *tgbotapi.Message) {
	if !h.allow(msg) {
		return
	}

	in, err := ParseAnalyzeArgs(msg.CommandArguments())
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	user, ok := h.owner(ctx, msg)
	if !ok {
		return
	}

	h.bot.SendTyping(msg.Chat.ID)

	res, err := h.bot.terrainService.Create(ctx, user.ID, in)
	if err != nil {
		h.bot.logger.Error("terrain analysis failed",
			zap.Error(err),
			zap.Int64("user_id", user.ID),
		)
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.reply(msg.Chat.ID, FormatAnalysis(res.Terrain, res.Analysis))
}

func (h *Handler) handleTerrains(ctx context.Context, msg *tgbotapi.Message) {
	user, ok := h.owner(ctx, msg)
	if !ok {
		return
	}

	items, err := h.bot.terrainService.List(ctx, user.ID)
	if err != nil {
		h.bot.logger.Error("failed to list terrains", zap.Error(err))
		h.bot.Send(msg.Chat.ID, genericError)
		return
	}

	if len(items) == 0 {
		h.bot.Send(msg.Chat.ID, "You have no terrains yet. Use /analyze to add one.")
		return
	}

	h.reply(msg.Chat.ID, FormatTerrainsList(items))
}

func (h *Handler) handleShow(ctx context.Context, msg *tgbotapi.Message) {
	item, ok := h.pick(ctx, msg)
	if !ok {
		return
	}
	h.reply(msg.Chat.ID, FormatAnalysis(item.Terrain, item.Analysis))
}

func (h *Handler) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	item, ok := h.pick(ctx, msg)
	if !ok {
		return
	}

	if err := h.bot.terrainService.Delete(ctx, item.Terrain.OwnerID, item.Terrain.ID); err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, "Terrain deleted.")
}

func (h *Handler) handleReanalyze(ctx context.Context, msg *tgbotapi.Message) {
	if !h.allow(msg) {
		return
	}

	item, ok := h.pick(ctx, msg)
	if !ok {
		return
	}

	h.bot.SendTyping(msg.Chat.ID)

	analysis, err := h.bot.terrainService.Reanalyze(ctx, item.Terrain.OwnerID, item.Terrain.ID)
	if err != nil {
		h.bot.logger.Error("reanalysis failed", zap.Error(err), zap.Int64("terrain_id", item.Terrain.ID))
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.reply(msg.Chat.ID, FormatAnalysis(item.Terrain, analysis))
}

func (h *Handler) handlePrice(ctx context.Context, msg *tgbotapi.Message) {
	if !h.allow(msg) {
		return
	}

	city, zip, err := ParsePriceArgs(msg.CommandArguments())
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.SendTyping(msg.Chat.ID)

	price, known := h.bot.prices.Estimate(ctx, city, zip)
	h.bot.Send(msg.Chat.ID, FormatMarketPrice(city, zip, price, known))
}

// pick resolves the 1-based index of /terrains for the sender.
func (h *Handler) pick(ctx context.Context, msg *tgbotapi.Message) (*service.TerrainWithAnalysis, bool) {
	n, err := ParseIndex(msg.CommandArguments())
	if err != nil {
		h.bot.Send(msg.Chat.ID, fmt.Sprintf("Give the terrain number from /terrains, e.g. /%s 1", msg.Command()))
		return nil, false
	}

	user, ok := h.owner(ctx, msg)
	if !ok {
		return nil, false
	}

	items, err := h.bot.terrainService.List(ctx, user.ID)
	if err != nil {
		h.bot.logger.Error("failed to list terrains", zap.Error(err))
		h.bot.Send(msg.Chat.ID, genericError)
		return nil, false
	}

	if n > len(items) {
		h.bot.Send(msg.Chat.ID, fmt.Sprintf("Terrain %d not found.", n))
		return nil, false
	}

	return &items[n-1], true
}

func (h *Handler) owner(ctx context.Context, msg *tgbotapi.Message) (*domain.User, bool) {
	user, err := h.bot.userService.GetOrCreate(ctx, msg.From.ID, msg.From.UserName)
	if err != nil {
		h.bot.logger.Error("failed to resolve user", zap.Error(err), zap.Int64("telegram_id", msg.From.ID))
		h.bot.Send(msg.Chat.ID, genericError)
		return nil, false
	}
	return user, true
}

// allow guards the commands that reach the listings provider.
func (h *Handler) allow(msg *tgbotapi.Message) bool {
	if h.bot.rateLimiter.Allow(msg.From.ID) {
		return true
	}

	resetTime := h.bot.rateLimiter.ResetTime(msg.From.ID)
	h.bot.logger.Warn("rate limit exceeded",
		zap.Int64("user_id", msg.From.ID),
		zap.Time("reset_at", resetTime),
	)
	h.bot.RecordRateLimitHit()
	h.bot.Send(msg.Chat.ID, "Too many requests. Please wait a minute.")
	return false
}

func (h *Handler) reply(chatID int64, text string) {
	for _, m := range SplitMessage(text, maxMessageLength) {
		if err := h.bot.Send(chatID, m); err != nil {
			h.bot.logger.Error("failed to send message", zap.Error(err))
		}
	}
}

func mapErrorToMessage(err error) string {
	switch {
	case errors.Is(err, ErrAnalyzeUsage):
		return "Usage: /analyze surface price city zip [viabilise]\nExample: /analyze 1200 85000 Libourne 33500"
	case errors.Is(err, ErrPriceUsage):
		return "Usage: /price city zip\nExample: /price Libourne 33500"
	case errors.Is(err, domain.ErrInvalidZipCode):
		return "The zip code is missing or too long."
	case errors.Is(err, domain.ErrInvalidSurface):
		return "The surface must be a positive number of m², at most 99,999,999.99."
	case errors.Is(err, domain.ErrInvalidPrice):
		return "The price must be a positive amount in euros, at most 9,999,999,999.99."
	case errors.Is(err, domain.ErrEmptyCity):
		return "The city is required."
	case errors.Is(err, domain.ErrInvalidTerrain):
		return "These terrain details are not valid."
	case errors.Is(err, domain.ErrTerrainNotFound):
		return "Terrain not found."
	case errors.Is(err, domain.ErrTerrainLimitReached):
		return "You reached the maximum number of terrains. Delete one with /delete first."
	case errors.Is(err, context.DeadlineExceeded):
		return "The analysis took too long. Please try again."
	default:
		return genericError
	}
}
