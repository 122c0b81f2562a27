// Package app builds the MycoBot services once at process start and hands
// them to the front ends.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mycobot/internal/analytics"
	"mycobot/internal/config"
	"mycobot/internal/dispatch"
	"mycobot/internal/faq"
	"mycobot/internal/llm"
	"mycobot/internal/panels"
	"mycobot/internal/storage"
	"mycobot/internal/voice"
)

type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	FAQ         *faq.Store
	ChatLog     *storage.ChatLog
	FarmLog     *storage.FieldLog
	EnvLog      *storage.FieldLog
	JournalLog  *storage.FieldLog
	Dispatcher  *dispatch.Dispatcher
	Transcriber *voice.Transcriber
	Panels      *panels.Catalog
}

// NewLogger builds the production zap logger at the configured level.
func NewLogger(level string, verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// New wires every service. An LLM client that cannot be created (for example
// a Yandex token exchange failing) is logged and left out, so the dispatcher
// answers from the offline FAQ only.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := faq.Load(cfg.FAQFilePath)
	if err != nil {
		logger.Warn("offline faq unavailable, continuing with empty store",
			zap.String("path", cfg.FAQFilePath), zap.Error(err))
	}
	logger.Info("offline faq loaded", zap.Int("entries", store.Len()))

	chatLog := storage.NewChatLog(cfg.ChatLogPath)
	if err := chatLog.EnsureInitialized(); err != nil {
		return nil, fmt.Errorf("init chat log: %w", err)
	}

	factory := llm.NewFactory(cfg)
	var client llm.Client
	if c, err := factory.CreateClient(string(cfg.LLMProvider), cfg.LLMModel); err != nil {
		logger.Error("failed to create llm client, offline answers only", zap.Error(err))
	} else {
		client = c
	}

	d := dispatch.New(client, store, chatLog,
		dispatch.WithPolicy(cfg.ChatLogPolicy),
		dispatch.WithTimeout(cfg.LLMTimeout),
		dispatch.WithLogger(logger.Named("dispatch")),
	)

	tr := voice.NewTranscriber(
		voice.NewWhisperRecognizer(llm.NewOpenAIAPI(factory.TranscriptionOptions()), cfg.TranscribeModel),
		logger.Named("voice"),
	)

	a := &App{
		Config:      cfg,
		Logger:      logger,
		FAQ:         store,
		ChatLog:     chatLog,
		FarmLog:     storage.NewFieldLog(cfg.FarmLogPath),
		EnvLog:      storage.NewFieldLog(cfg.EnvLogPath),
		JournalLog:  storage.NewFieldLog(cfg.JournalLogPath),
		Dispatcher:  d,
		Transcriber: tr,
	}
	a.Panels = panels.NewCatalog(panels.Deps{
		Asker:       d,
		Transcriber: tr,
		ChatLog:     chatLog,
		FarmLog:     a.FarmLog,
		EnvLog:      a.EnvLog,
		JournalLog:  a.JournalLog,
		PhotoDir:    cfg.PhotoDir,
	})
	return a, nil
}

// Digest builds the chat-log digest for day.
func (a *App) Digest(day time.Time) (string, error) {
	recs, err := a.ChatLog.Records()
	if err != nil {
		return "", fmt.Errorf("read chat log: %w", err)
	}
	return analytics.FormatReport(analytics.AnalyzeDay(recs, day)), nil
}

// DigestFunc adapts Digest for the scheduler; send delivers the text.
func (a *App) DigestFunc(send func(ctx context.Context, text string) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		text, err := a.Digest(time.Now())
		if err != nil {
			return err
		}
		a.Logger.Info("daily digest", zap.String("text", text))
		if send == nil {
			return nil
		}
		return send(ctx, text)
	}
}
