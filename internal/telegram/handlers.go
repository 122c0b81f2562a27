package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"mycobot/internal/panels"
)

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	switch {
	case msg.Voice != nil:
		b.handleVoice(ctx, chatID, msg.Voice.FileID)
	case msg.Audio != nil:
		b.handleVoice(ctx, chatID, msg.Audio.FileID)
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg)
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	default:
		text := strings.TrimSpace(msg.Text)
		b.runPanel(ctx, chatID, "chat", panels.Input{Values: map[string]string{"question": text}})
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	name := strings.ToLower(msg.Command())
	switch name {
	case "start", "help", "panels":
		b.sendMessage(msg.Chat.ID, b.helpText())
		return
	}
	p, ok := b.catalog.Get(name)
	if !ok {
		b.sendMessage(msg.Chat.ID, "Unknown command. Send /panels to see what I can do.")
		return
	}
	b.runPanel(ctx, msg.Chat.ID, name, panels.Input{Values: argsFor(p, msg.CommandArguments())})
}

func (b *Bot) handleVoice(ctx context.Context, chatID int64, fileID string) {
	audio, err := b.files.Fetch(fileID)
	if err != nil {
		b.logger.Warn("voice download failed", zap.Error(err))
		b.sendMessage(chatID, "Could not download your voice note, please try again.")
		return
	}
	b.runPanel(ctx, chatID, "chat", panels.Input{Audio: audio})
}

// handlePhoto attaches the largest photo size to a "/journal ..." caption.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	caption := strings.TrimSpace(msg.Caption)
	if !strings.HasPrefix(caption, "/journal") {
		b.sendMessage(msg.Chat.ID, "To save a photo, send it with a caption like: /journal notes=pins are forming")
		return
	}
	photo, err := b.files.Fetch(msg.Photo[len(msg.Photo)-1].FileID)
	if err != nil {
		b.logger.Warn("photo download failed", zap.Error(err))
		b.sendMessage(msg.Chat.ID, "Could not download your photo, please try again.")
		return
	}
	p, _ := b.catalog.Get("journal")
	args := strings.TrimSpace(strings.TrimPrefix(caption, "/journal"))
	b.runPanel(ctx, msg.Chat.ID, "journal", panels.Input{Values: argsFor(p, args), Photo: photo})
}

func (b *Bot) runPanel(ctx context.Context, chatID int64, name string, in panels.Input) {
	out, err := b.catalog.Run(ctx, name, in)
	if out.Notice != "" {
		b.sendMessage(chatID, out.Notice)
	}
	var inputErr *panels.InputError
	switch {
	case errors.As(err, &inputErr):
		b.sendMessage(chatID, "⚠️ "+inputErr.Message)
		return
	case err != nil:
		b.logger.Error("panel failed", zap.String("panel", name), zap.Error(err))
		b.sendMessage(chatID, "Sorry, something went wrong.")
		return
	}

	if out.CSV != "" {
		b.sendMessage(chatID, out.Text)
		b.sendDocument(chatID, out.CSVName, out.CSV)
		return
	}
	b.sendMessage(chatID, out.Text)
}

// argsFor parses command arguments; bare words fill the panel's first
// free-text field.
func argsFor(p panels.Panel, args string) map[string]string {
	fallback := ""
	for _, f := range p.Fields {
		if f.Kind == panels.KindText || f.Kind == panels.KindLongText {
			fallback = f.Key
			break
		}
	}
	return panels.ParseArgs(strings.Fields(args), fallback)
}
