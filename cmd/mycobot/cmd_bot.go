package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mycobot/internal/scheduler"
	"mycobot/internal/telegram"
)

// botCmd runs the Telegram front end until interrupted
var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long: `Starts the Telegram bot using TELEGRAM_BOT_TOKEN. Plain messages and
voice notes are answered by the chat panel; /panels lists the other commands.

When DIGEST_CHAT_ID is set, a daily digest of the chat log is sent there on
the DIGEST_CRON schedule (UTC).`,
	RunE: runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	bot, err := telegram.New(cfg.TelegramBotToken, a.Panels, cfg.DigestChatID, logger.Named("telegram"))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.DigestChatID != 0 && cfg.DigestCron != "" {
		sched := scheduler.New(cfg.DigestCron, logger.Named("scheduler"))
		sched.SetReportFunction(a.DigestFunc(bot.SendDigest))
		if err := sched.Start(); err != nil {
			logger.Error("failed to start digest scheduler", zap.Error(err))
		} else {
			defer sched.Stop()
		}
	}

	logger.Info("starting telegram bot")
	bot.Start(ctx)
	logger.Info("telegram bot stopped")
	return nil
}
