package telegram

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"mycobot/internal/panels"
	"mycobot/internal/storage"
)

type fakeSender struct {
	sent []string
	docs []tgbotapi.DocumentConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		f.sent = append(f.sent, v.Text)
	case tgbotapi.DocumentConfig:
		f.docs = append(f.docs, v)
	}
	return tgbotapi.Message{}, nil
}

type fakeFetcher struct {
	data map[string][]byte
}

func (f fakeFetcher) Fetch(fileID string) ([]byte, error) {
	b, ok := f.data[fileID]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

type recordingAsker struct{ prompts []string }

func (r *recordingAsker) Ask(ctx context.Context, prompt string) string {
	r.prompts = append(r.prompts, prompt)
	return "answer: " + prompt
}

type fixedTranscriber string

func (f fixedTranscriber) Transcribe(ctx context.Context, audio []byte) string { return string(f) }

func newTestBot(t *testing.T) (*Bot, *fakeSender, *recordingAsker, string) {
	t.Helper()
	dir := t.TempDir()
	asker := &recordingAsker{}
	catalog := panels.NewCatalog(panels.Deps{
		Asker:       asker,
		Transcriber: fixedTranscriber("how do I pasteurise straw"),
		ChatLog:     storage.NewChatLog(filepath.Join(dir, "chat_history.csv")),
		FarmLog:     storage.NewFieldLog(filepath.Join(dir, "farm_log.csv")),
		EnvLog:      storage.NewFieldLog(filepath.Join(dir, "env_log.csv")),
		JournalLog:  storage.NewFieldLog(filepath.Join(dir, "journal_log.csv")),
		PhotoDir:    dir,
		Now:         func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) },
	})
	fs := &fakeSender{}
	b := &Bot{
		s:       fs,
		files:   fakeFetcher{data: map[string][]byte{"voice-1": []byte("OggS...."), "photo-big": []byte("jpeg")}},
		catalog: catalog,
		logger:  zap.NewNop(),
	}
	return b, fs, asker, dir
}

func command(chatID int64, text string) *tgbotapi.Message {
	name, _, _ := strings.Cut(text, " ")
	return &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}
}

func TestPlainText_GoesToChatPanel(t *testing.T) {
	b, fs, asker, _ := newTestBot(t)
	b.handleIncomingMessage(context.Background(), &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "  when to harvest oyster?  "})

	if len(asker.prompts) != 1 || asker.prompts[0] != "when to harvest oyster?" {
		t.Fatalf("unexpected prompts: %+v", asker.prompts)
	}
	if len(fs.sent) != 1 || fs.sent[0] != "answer: when to harvest oyster?" {
		t.Fatalf("unexpected sent: %+v", fs.sent)
	}
}

func TestEmptyText_Warns(t *testing.T) {
	b, fs, asker, _ := newTestBot(t)
	b.handleIncomingMessage(context.Background(), &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "   "})

	if len(asker.prompts) != 0 {
		t.Fatalf("dispatcher should not be called: %+v", asker.prompts)
	}
	if len(fs.sent) != 1 || !strings.HasPrefix(fs.sent[0], "⚠️ ") {
		t.Fatalf("expected warning, got %+v", fs.sent)
	}
}

func TestVoice_TranscribesThenAsks(t *testing.T) {
	b, fs, asker, _ := newTestBot(t)
	msg := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Voice: &tgbotapi.Voice{FileID: "voice-1"}}
	b.handleIncomingMessage(context.Background(), msg)

	if len(asker.prompts) != 1 || asker.prompts[0] != "how do I pasteurise straw" {
		t.Fatalf("unexpected prompts: %+v", asker.prompts)
	}
	if len(fs.sent) != 2 || fs.sent[0] != "Transcript: how do I pasteurise straw" {
		t.Fatalf("unexpected sent: %+v", fs.sent)
	}
}

func TestVoice_DownloadFailure(t *testing.T) {
	b, fs, asker, _ := newTestBot(t)
	msg := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Voice: &tgbotapi.Voice{FileID: "missing"}}
	b.handleIncomingMessage(context.Background(), msg)

	if len(asker.prompts) != 0 || len(fs.sent) != 1 || !strings.Contains(fs.sent[0], "Could not download") {
		t.Fatalf("unexpected result: prompts=%+v sent=%+v", asker.prompts, fs.sent)
	}
}

func TestCommand_RunsPromptPanel(t *testing.T) {
	b, fs, asker, _ := newTestBot(t)
	b.handleIncomingMessage(context.Background(), command(1, "/substrate species=Oyster city=New Delhi"))

	want := "What is the best substrate to grow Oyster mushrooms in Terrace setup in New Delhi?"
	if len(asker.prompts) != 1 || asker.prompts[0] != want {
		t.Fatalf("unexpected prompts: %+v", asker.prompts)
	}
	if len(fs.sent) != 1 || fs.sent[0] != "answer: "+want {
		t.Fatalf("unexpected sent: %+v", fs.sent)
	}
}

func TestCommand_InvalidOption(t *testing.T) {
	b, fs, asker, _ := newTestBot(t)
	b.handleIncomingMessage(context.Background(), command(1, "/substrate species=Truffle"))

	if len(asker.prompts) != 0 {
		t.Fatalf("dispatcher should not be called: %+v", asker.prompts)
	}
	if len(fs.sent) != 1 || !strings.HasPrefix(fs.sent[0], "⚠️ ") {
		t.Fatalf("expected warning, got %+v", fs.sent)
	}
}

func TestCommand_TrackerThenExportSendsDocument(t *testing.T) {
	b, fs, _, _ := newTestBot(t)
	b.handleIncomingMessage(context.Background(), command(1, "/tracker soaked the straw"))
	if len(fs.sent) != 1 || fs.sent[0] != "Saved task for 2025-03-01: soaked the straw" {
		t.Fatalf("unexpected sent: %+v", fs.sent)
	}

	b.handleIncomingMessage(context.Background(), command(1, "/export"))
	if len(fs.docs) != 1 {
		t.Fatalf("expected one document, got %d", len(fs.docs))
	}
	file, ok := fs.docs[0].File.(tgbotapi.FileBytes)
	if !ok || file.Name != "farm_log.csv" {
		t.Fatalf("unexpected document: %+v", fs.docs[0].File)
	}
	if !strings.Contains(string(file.Bytes), "2025-03-01,soaked the straw") {
		t.Fatalf("unexpected csv: %q", file.Bytes)
	}
}

func TestCommand_Unknown(t *testing.T) {
	b, fs, _, _ := newTestBot(t)
	b.handleIncomingMessage(context.Background(), command(1, "/weather"))
	if len(fs.sent) != 1 || !strings.HasPrefix(fs.sent[0], "Unknown command") {
		t.Fatalf("unexpected sent: %+v", fs.sent)
	}
}

func TestCommand_HelpListsPanels(t *testing.T) {
	b, fs, _, _ := newTestBot(t)
	b.handleIncomingMessage(context.Background(), command(1, "/panels"))
	if len(fs.sent) != 1 {
		t.Fatalf("unexpected sent: %+v", fs.sent)
	}
	for _, name := range []string{"/chat", "/substrate", "/journal", "/history"} {
		if !strings.Contains(fs.sent[0], name) {
			t.Fatalf("help text misses %s: %q", name, fs.sent[0])
		}
	}
}

func TestPhoto_WithJournalCaption(t *testing.T) {
	b, fs, _, dir := newTestBot(t)
	msg := &tgbotapi.Message{
		Chat:    &tgbotapi.Chat{ID: 1},
		Caption: "/journal pins are forming",
		Photo:   []tgbotapi.PhotoSize{{FileID: "photo-small"}, {FileID: "photo-big"}},
	}
	b.handleIncomingMessage(context.Background(), msg)

	if len(fs.sent) != 1 || fs.sent[0] != "Journal entry saved." {
		t.Fatalf("unexpected sent: %+v", fs.sent)
	}
	data, err := os.ReadFile(filepath.Join(dir, "photo_2025-03-01.jpg"))
	if err != nil || string(data) != "jpeg" {
		t.Fatalf("photo not saved: %v %q", err, data)
	}
}

func TestPhoto_WithoutCaption(t *testing.T) {
	b, fs, _, _ := newTestBot(t)
	msg := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Photo: []tgbotapi.PhotoSize{{FileID: "photo-big"}}}
	b.handleIncomingMessage(context.Background(), msg)
	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0], "/journal") {
		t.Fatalf("unexpected sent: %+v", fs.sent)
	}
}

func TestSendDigest(t *testing.T) {
	b, fs, _, _ := newTestBot(t)
	if err := b.SendDigest(context.Background(), "digest"); err != nil || len(fs.sent) != 0 {
		t.Fatalf("digest without chat id should be a no-op: %v %+v", err, fs.sent)
	}
	b.digestChatID = 77
	if err := b.SendDigest(context.Background(), "digest"); err != nil {
		t.Fatalf("send digest: %v", err)
	}
	if len(fs.sent) != 1 || fs.sent[0] != "digest" {
		t.Fatalf("unexpected sent: %+v", fs.sent)
	}
}
