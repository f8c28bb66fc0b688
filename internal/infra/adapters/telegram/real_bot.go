package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-ai-chatbot/internal/application"
	"telegram-ai-chatbot/internal/config"
	"telegram-ai-chatbot/internal/domain/ports/adapter"
	"telegram-ai-chatbot/internal/infra/logging"
	"telegram-ai-chatbot/internal/infra/metrics"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter uses tgbotapi to poll updates and delegates to BotFacade.
type RealTelegramBotAdapter struct {
	bot    *tgbotapi.BotAPI
	cfg    *config.BotConfig
	facade *application.BotFacade
	log    *zerolog.Logger

	adminIDsMap   map[int64]struct{}
	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, facade *application.BotFacade, logger *zerolog.Logger, updateWorkers int) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if updateWorkers <= 0 {
		updateWorkers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	adminMap := map[int64]struct{}{}
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		log:           logger,
		adminIDsMap:   adminMap,
		updateWorkers: updateWorkers,
	}, nil
}

// StartPolling runs until ctx is canceled. Updates are fanned out to
// updateWorkers goroutines, so per-user ordering is best-effort.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					upCtx := logging.WithUpdateID(ctx, uuid.NewString())
					if err := r.handleUpdate(upCtx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

// StopPolling stops the polling loop gracefully.
func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	msg := tgbotapi.NewMessage(tgID, text)
	_, err := r.bot.Send(msg)
	return err
}

// SendButtons sends a message with inline buttons.
// - If btn.URL is set, the button opens a link
// - Else if btn.Data is set, the button sends callback data
// - Else a safe fallback uses btn.Text as callback data
func (r *RealTelegramBotAdapter) SendButtons(
	ctx context.Context,
	telegramID int64,
	text string,
	rows [][]adapter.InlineButton,
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			var kb tgbotapi.InlineKeyboardButton
			switch {
			case btn.URL != "":
				kb = tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL)
			case btn.Data != "":
				kb = tgbotapi.NewInlineKeyboardButtonData(label, btn.Data)
			default:
				kb = tgbotapi.NewInlineKeyboardButtonData(label, label)
			}
			btns = append(btns, kb)
		}
		kbRows = append(kbRows, btns)
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	msg := tgbotapi.NewMessage(telegramID, text)
	msg.ReplyMarkup = markup
	_, err := r.bot.Send(msg)
	return err
}

type cbHandler func(ctx context.Context, chatID int64, data string) error

// Exact-match callbacks
func (r *RealTelegramBotAdapter) cbRoutes() map[string]cbHandler {
	return map[string]cbHandler{
		"cmd:menu": func(ctx context.Context, id int64, _ string) error {
			return r.sendMainMenu(ctx, id, "Choose an action:")
		},
		"cmd:news": func(ctx context.Context, id int64, _ string) error {
			return r.sendTopicsMenu(ctx, id, "news")
		},
		"cmd:invest": func(ctx context.Context, id int64, _ string) error {
			return r.sendTopicsMenu(ctx, id, "invest")
		},
		"cmd:clear": func(ctx context.Context, id int64, _ string) error {
			text, err := r.facade.HandleClear(ctx, id)
			if err != nil {
				text = "Failed to clear history."
			}
			return r.SendMessage(ctx, id, text)
		},
		"cmd:help": func(ctx context.Context, id int64, _ string) error {
			return r.SendMessage(ctx, id, r.facade.HandleHelp())
		},
	}
}

// Prefix-match callbacks
func (r *RealTelegramBotAdapter) cbPrefixRoutes() []struct {
	Prefix string
	Fn     cbHandler
} {
	return []struct {
		Prefix string
		Fn     cbHandler
	}{
		{
			Prefix: "news:",
			Fn: func(ctx context.Context, id int64, data string) error {
				topic := strings.TrimPrefix(data, "news:")
				text, err := r.facade.HandleNews(ctx, id, topic)
				if err != nil {
					r.log.Error().Err(err).Str("topic", topic).Msg("news callback failed")
					text = "Sorry, I couldn't fetch the news right now."
				}
				return r.SendMessage(ctx, id, text)
			},
		},
		{
			Prefix: "invest:",
			Fn: func(ctx context.Context, id int64, data string) error {
				topic := strings.TrimPrefix(data, "invest:")
				text, err := r.facade.HandleInvest(ctx, id, topic)
				if err != nil {
					r.log.Error().Err(err).Str("topic", topic).Msg("invest callback failed")
					text = "Sorry, I couldn't analyze the market right now."
				}
				return r.SendMessage(ctx, id, text)
			},
		},
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	// ----- Inline button callbacks -----
	if update.CallbackQuery != nil {
		metrics.IncUpdate("callback")
		return r.handleQuery(ctx, update.CallbackQuery)
	}

	// ----- Regular messages -----
	if update.Message == nil {
		return nil
	}
	tgUser := update.Message.From
	if tgUser == nil {
		return nil
	}
	ctx = logging.WithTgID(ctx, tgUser.ID)

	fields := strings.Fields(update.Message.Text)
	command := ""
	if len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
		command = fields[0]
		metrics.IncUpdate("command")
	} else {
		metrics.IncUpdate("message")
	}
	arg := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, command))

	switch command {
	case "/start":
		text, err := r.facade.HandleStart(ctx, tgUser.ID, tgUser.UserName)
		if err != nil {
			return r.SendMessage(ctx, tgUser.ID, "Failed to initialize. Please try again.")
		}
		if err := r.sendMainMenu(ctx, tgUser.ID, text); err != nil {
			return r.SendMessage(ctx, tgUser.ID, text)
		}
		return nil

	case "/help":
		return r.SendMessage(ctx, tgUser.ID, r.facade.HandleHelp())

	case "/news":
		if arg == "" {
			return r.sendTopicsMenu(ctx, tgUser.ID, "news")
		}
		text, err := r.facade.HandleNews(ctx, tgUser.ID, arg)
		if err != nil {
			r.log.Error().Err(err).Str("topic", arg).Msg("news command failed")
			text = "Sorry, I couldn't fetch the news right now."
		}
		return r.SendMessage(ctx, tgUser.ID, text)

	case "/invest":
		if arg == "" {
			return r.sendTopicsMenu(ctx, tgUser.ID, "invest")
		}
		text, err := r.facade.HandleInvest(ctx, tgUser.ID, arg)
		if err != nil {
			r.log.Error().Err(err).Str("topic", arg).Msg("invest command failed")
			text = "Sorry, I couldn't analyze the market right now."
		}
		return r.SendMessage(ctx, tgUser.ID, text)

	case "/clear":
		text, err := r.facade.HandleClear(ctx, tgUser.ID)
		if err != nil {
			text = "Failed to clear history."
		}
		return r.SendMessage(ctx, tgUser.ID, text)

	case "/models":
		if !r.isAdmin(tgUser.ID) {
			return r.SendMessage(ctx, tgUser.ID, "You are not authorized to use this command.")
		}
		text, err := r.facade.HandleModels(ctx)
		if err != nil {
			r.log.Error().Err(err).Msg("models command failed")
			text = "Failed to list models."
		}
		return r.SendMessage(ctx, tgUser.ID, text)

	case "/stats":
		if !r.isAdmin(tgUser.ID) {
			return r.SendMessage(ctx, tgUser.ID, "You are not authorized to use this command.")
		}
		text, err := r.facade.HandleStats(ctx)
		if err != nil {
			r.log.Error().Err(err).Msg("stats command failed")
			text = "Failed to get stats."
		}
		return r.SendMessage(ctx, tgUser.ID, text)

	case "":
		// Free text: chat flow with news/investment interception.
		if update.Message.Text == "" {
			return nil
		}
		reply, err := r.facade.HandleChatMessage(ctx, tgUser.ID, update.Message.Text)
		if err != nil {
			r.log.Error().Err(err).Msg("chat message failed")
			return r.SendMessage(ctx, tgUser.ID, "Sorry, something went wrong. Please try again.")
		}
		if strings.TrimSpace(reply) != "" {
			return r.SendMessage(ctx, tgUser.ID, reply)
		}
		return nil

	default:
		return r.SendMessage(ctx, tgUser.ID, "Unknown command. Send /help for the list of commands.")
	}
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	// Stop telegram spinner when we return
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	var chatID int64
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	} else {
		chatID = query.From.ID
	}
	if chatID == 0 {
		return nil
	}
	ctx = logging.WithTgID(ctx, chatID)

	data := strings.TrimSpace(query.Data)

	// Exact matches
	if fn, ok := r.cbRoutes()[data]; ok {
		return fn(ctx, chatID, data)
	}
	// Prefix matches
	for _, pr := range r.cbPrefixRoutes() {
		if strings.HasPrefix(data, pr.Prefix) {
			return pr.Fn(ctx, chatID, data)
		}
	}
	return errors.New("unknown callback data")
}

// sendMainMenu shows the main actions as inline buttons.
func (r *RealTelegramBotAdapter) sendMainMenu(ctx context.Context, telegramID int64, intro string) error {
	rows := [][]adapter.InlineButton{
		{{Text: "📰 News", Data: "cmd:news"}},
		{{Text: "📈 Markets", Data: "cmd:invest"}},
		{{Text: "🗑 Clear history", Data: "cmd:clear"}},
		{{Text: "❓ Help", Data: "cmd:help"}},
	}
	if strings.TrimSpace(intro) == "" {
		intro = "Welcome! Choose an action:"
	}
	return r.SendButtons(ctx, telegramID, intro, rows)
}

// sendTopicsMenu lists preset topics; pressing one runs the digest/analysis.
func (r *RealTelegramBotAdapter) sendTopicsMenu(ctx context.Context, telegramID int64, kind string) error {
	topics := []string{"technology", "business", "crypto", "energy", "politics"}
	rows := make([][]adapter.InlineButton, 0, len(topics)+1)
	for _, t := range topics {
		rows = append(rows, []adapter.InlineButton{{Text: t, Data: kind + ":" + t}})
	}
	rows = append(rows, []adapter.InlineButton{{Text: "◀️ Menu", Data: "cmd:menu"}})
	return r.SendButtons(ctx, telegramID, "Pick a topic, or type /"+kind+" <topic>:", rows)
}

func (r *RealTelegramBotAdapter) isAdmin(tgID int64) bool {
	_, ok := r.adminIDsMap[tgID]
	return ok
}
