package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"mycobot/internal/panels"
)

// Bot exposes the panels over Telegram. Plain text and voice notes go to
// the chat panel; "/<panel> key=value ..." runs any other panel.
type Bot struct {
	api          *tgbotapi.BotAPI
	s            sender
	files        fetcher
	catalog      *panels.Catalog
	logger       *zap.Logger
	digestChatID int64
}

func New(botToken string, catalog *panels.Catalog, digestChatID int64, logger *zap.Logger) (*Bot, error) {
	if botToken == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is not set")
	}
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:          api,
		s:            botAPISender{api: api},
		files:        newBotAPIFetcher(api),
		catalog:      catalog,
		logger:       logger,
		digestChatID: digestChatID,
	}, nil
}

// Start polls for updates until ctx is cancelled. Updates are handled one
// at a time.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleIncomingMessage(ctx, update.Message)
			}
		}
	}
}

// SendDigest delivers the daily digest to the configured chat, if any.
func (b *Bot) SendDigest(_ context.Context, text string) error {
	if b.digestChatID == 0 {
		return nil
	}
	if _, err := b.s.Send(tgbotapi.NewMessage(b.digestChatID, text)); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		b.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendDocument(chatID int64, name, content string) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: []byte(content)})
	if _, err := b.s.Send(doc); err != nil {
		b.logger.Warn("failed to send document", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) helpText() string {
	var bld strings.Builder
	bld.WriteString("Ask me anything about mushroom farming, or send a voice note.\n\nPanels:\n")
	for _, p := range b.catalog.Panels() {
		line := "/" + p.Name + " - " + p.Title
		if u := p.Usage(); u != "" {
			line += "\n    " + u
		}
		bld.WriteString(line + "\n")
	}
	return bld.String()
}
