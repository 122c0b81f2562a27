package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mycobot/internal/panels"
)

var digestDate string

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [audio-file]",
	Short: "Transcribe a recorded question (wav, ogg, flac, mp3, webm)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscribe,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the chat history as CSV",
	RunE:  runHistory,
}

// digestCmd summarises one day of the chat log
var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Summarise the questions answered on one day",
	RunE:  runDigest,
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	audio, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read audio: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.Transcriber.Transcribe(cmd.Context(), audio))
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	return printPanel(cmd, a.Panels, "history", panels.Input{})
}

func runDigest(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	day := time.Now()
	if digestDate != "" {
		day, err = time.ParseInLocation(panels.DateLayout, digestDate, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", digestDate)
		}
	}
	text, err := a.Digest(day)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
