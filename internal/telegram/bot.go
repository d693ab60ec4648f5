// Package telegram is a chat front-end over the application actions.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ai-kitchen/internal/app"
	"ai-kitchen/internal/config"
	"ai-kitchen/internal/metrics"
	"ai-kitchen/internal/planner"
	"ai-kitchen/internal/preferences"
	"ai-kitchen/internal/recipe"
	"ai-kitchen/internal/shopping"
)

const (
	// requestTimeout bounds one chat request, plan generation included.
	requestTimeout = 5 * time.Minute
	maxPhotoBytes  = 10 << 20
	usageDays      = 7
)

// Actions is the subset of the application the bot drives.
type Actions interface {
	GenerateMealPlan(ctx context.Context, userID, startDate string, daysCount int, prefs preferences.Preferences) app.MealPlanResult
	GenerateRecipesFromIngredients(ctx context.Context, ingredients []string, prefs preferences.Preferences) app.RecipesResult
	ExtractIngredients(ctx context.Context, image []byte) app.IngredientsResult
	GetPreferences(ctx context.Context, userID string) app.PreferencesResult
}

// UsageReader reports recent model usage for the admin /metrics command.
type UsageReader interface {
	GetDailyUsage(days int) ([]metrics.DailyUsage, error)
}

// Bot wraps the Telegram API and the application actions.
type Bot struct {
	api     *tgbotapi.BotAPI
	actions Actions
	usage   UsageReader
	cfg     *config.Config
	client  *http.Client
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, actions Actions, usage UsageReader) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	slog.Info("telegram bot authorized", slog.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	slog.Info("telegram webhook set", slog.String("description", resp.Description))

	return &Bot{
		api:     api,
		actions: actions,
		usage:   usage,
		cfg:     cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// WebhookHandler returns the handler Telegram posts updates to.
func (b *Bot) WebhookHandler() http.Handler {
	return http.HandlerFunc(b.handleWebhook)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		slog.Warn("failed to parse telegram update", slog.Any("error", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if !isAllowed(b.cfg.TelegramAllowedUserIDs, msg.From.ID) {
		slog.Warn("unauthorized telegram user",
			slog.Int64("telegram_id", msg.From.ID),
			slog.String("username", msg.From.UserName),
		)
		return
	}

	go b.processMessage(msg)
}

func isAllowed(allowed []int64, id int64) bool {
	for _, a := range allowed {
		if a == id {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch {
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg)
	case msg.IsCommand() && msg.Command() == "metrics":
		b.handleMetrics(msg)
	case msg.IsCommand() && msg.Command() == "plan":
		b.handlePlan(ctx, msg)
	case msg.IsCommand():
		b.reply(msg.Chat.ID, helpText)
	default:
		b.handleIngredients(ctx, msg, parseIngredients(msg.Text))
	}
}

const helpText = "🧑‍🍳 *AI Kitchen*\n\n" +
	"• `/plan [days]` builds a meal plan starting today\n" +
	"• Send a list of ingredients, comma separated, for recipe ideas\n" +
	"• Send a photo of your ingredients for recipe ideas"

func (b *Bot) handlePlan(ctx context.Context, msg *tgbotapi.Message) {
	days, err := parseDays(msg.CommandArguments())
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Usage: `/plan [days]` with days between 1 and "+strconv.Itoa(planner.MaxDays))
		return
	}

	status := b.reply(msg.Chat.ID, "🧑‍🍳 *Thinking...*\n(Planning your meals and writing the recipes)")

	userID := chatUserID(msg.From.ID)
	res := b.actions.GenerateMealPlan(ctx, userID, "", days, b.savedPreferences(ctx, userID))
	if !res.Success {
		b.edit(msg.Chat.ID, status, "❌ "+res.Error)
		return
	}

	planText, shoppingText := formatPlanMarkdownParts(res.Data.MealPlan, res.Data.Recipes)
	b.edit(msg.Chat.ID, status, planText)
	b.reply(msg.Chat.ID, shoppingText)
}

func (b *Bot) handleIngredients(ctx context.Context, msg *tgbotapi.Message, ingredients []string) {
	if len(ingredients) == 0 {
		b.reply(msg.Chat.ID, helpText)
		return
	}

	status := b.reply(msg.Chat.ID, "🥘 *Cooking up ideas...*")
	userID := chatUserID(msg.From.ID)
	res := b.actions.GenerateRecipesFromIngredients(ctx, ingredients, b.savedPreferences(ctx, userID))
	if !res.Success {
		b.edit(msg.Chat.ID, status, "❌ "+res.Error)
		return
	}
	b.edit(msg.Chat.ID, status, formatSuggestions(ingredients, res))
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	// Telegram lists sizes smallest first.
	photo := msg.Photo[len(msg.Photo)-1]

	image, err := b.download(ctx, photo.FileID)
	if err != nil {
		slog.Error("failed to download telegram photo", slog.String("file_id", photo.FileID), slog.Any("error", err))
		b.reply(msg.Chat.ID, "❌ "+app.MsgImageFailed)
		return
	}

	extracted := b.actions.ExtractIngredients(ctx, image)
	if !extracted.Success {
		b.reply(msg.Chat.ID, "❌ "+extracted.Error)
		return
	}
	b.handleIngredients(ctx, msg, extracted.Ingredients)
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
}

// savedPreferences returns the user's stored preferences, or none.
func (b *Bot) savedPreferences(ctx context.Context, userID string) preferences.Preferences {
	res := b.actions.GetPreferences(ctx, userID)
	if !res.Success || res.Preferences == nil {
		return preferences.Preferences{}
	}
	return *res.Preferences
}

func (b *Bot) handleMetrics(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.usage.GetDailyUsage(usageDays)
	if err != nil {
		slog.Error("failed to fetch usage", slog.Any("error", err))
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	b.reply(msg.Chat.ID, formatUsageReport(usage, metrics.GetSysHealth(dataDir(b.cfg.DatabasePath))))
}

// reply sends a Markdown message and returns its ID, or 0 when sending
// failed.
func (b *Bot) reply(chatID int64, text string) int {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(m)
	if err != nil {
		slog.Error("failed to send telegram message", slog.Int64("chat_id", chatID), slog.Any("error", err))
		return 0
	}
	return sent.MessageID
}

// edit replaces a status message, falling back to a new message when the
// status was never sent.
func (b *Bot) edit(chatID int64, messageID int, text string) {
	if messageID == 0 {
		b.reply(chatID, text)
		return
	}
	e := tgbotapi.NewEditMessageText(chatID, messageID, text)
	e.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(e); err != nil {
		slog.Error("failed to edit telegram message", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}

func chatUserID(telegramID int64) string {
	return "tg-" + strconv.FormatInt(telegramID, 10)
}

func dataDir(dbPath string) string {
	return filepath.Dir(dbPath)
}

// parseDays reads the optional /plan argument. Empty means the default.
func parseDays(arg string) (int, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return app.DefaultDays, nil
	}
	days, err := strconv.Atoi(arg)
	if err != nil {
		return 0, err
	}
	if days < 1 || days > planner.MaxDays {
		return 0, fmt.Errorf("days out of range: %d", days)
	}
	return days, nil
}

// parseIngredients splits a message on commas and new lines.
func parseIngredients(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func formatPlanMarkdownParts(plan *planner.MealPlan, recipes []recipe.Recipe) (string, string) {
	byID := make(map[string]recipe.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}
	name := func(ref *planner.RecipeRef) string {
		if ref == nil {
			return "-"
		}
		if r, ok := byID[ref.ID]; ok {
			return r.Summary()
		}
		return "-"
	}

	var pb strings.Builder
	fmt.Fprintf(&pb, "📅 *%s*\n", plan.Title)
	fmt.Fprintf(&pb, "_%s → %s_\n\n", plan.StartDate, plan.EndDate)
	for _, day := range plan.DailyMeals {
		fmt.Fprintf(&pb, "*%s*\n", day.Date)
		fmt.Fprintf(&pb, "🍳 %s\n", name(day.Breakfast))
		fmt.Fprintf(&pb, "🥗 %s\n", name(day.Lunch))
		fmt.Fprintf(&pb, "🍲 %s\n", name(day.Dinner))
		for i := range day.Snacks {
			fmt.Fprintf(&pb, "🍎 %s\n", name(&day.Snacks[i]))
		}
		pb.WriteString("\n")
	}

	list := shopping.BuildList(plan.ID, plan.UserID, recipes)
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n\n")
	for _, item := range list.Items {
		fmt.Fprintf(&sb, "• %s\n", item)
	}

	return pb.String(), sb.String()
}

func formatSuggestions(ingredients []string, res app.RecipesResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🥘 *Ideas for* %s\n\n", strings.Join(ingredients, ", "))
	for i, r := range res.Recipes {
		fmt.Fprintf(&sb, "*%d. %s*\n", i+1, r.Title)
		if len(r.Tags) > 0 {
			fmt.Fprintf(&sb, "_%s_\n", strings.Join(r.Tags, ", "))
		}
		if len(r.Allergens) > 0 {
			fmt.Fprintf(&sb, "⚠️ Contains: %s\n", strings.Join(r.Allergens, ", "))
		}
		for j, step := range r.Instructions {
			fmt.Fprintf(&sb, "%d) %s\n", j+1, step)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatUsageReport(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataDiskSize)
	return sb.String()
}
