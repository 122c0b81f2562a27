// Package voice converts recorded questions to text.
package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// FailureText is returned whenever audio cannot be turned into text.
const FailureText = "could not understand audio"

// ErrUnknownFormat is reported for audio in a container we do not upload.
var ErrUnknownFormat = errors.New("unrecognised audio container")

// Recognizer performs the actual speech-to-text call.
type Recognizer interface {
	Recognize(ctx context.Context, filename string, audio []byte) (string, error)
}

// Transcriber never fails: every error collapses to FailureText.
type Transcriber struct {
	rec    Recognizer
	logger *zap.Logger
}

func NewTranscriber(rec Recognizer, logger *zap.Logger) *Transcriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transcriber{rec: rec, logger: logger}
}

func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) string {
	text, err := t.TranscribeErr(ctx, audio)
	if err != nil {
		t.logger.Warn("transcription failed", zap.Int("bytes", len(audio)), zap.Error(err))
		return FailureText
	}
	return text
}

// TranscribeErr is Transcribe with the failure cause kept.
func (t *Transcriber) TranscribeErr(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("empty audio")
	}
	ext, err := DetectFormat(audio)
	if err != nil {
		return "", err
	}
	if t.rec == nil {
		return "", errors.New("no recognizer configured")
	}
	text, err := t.rec.Recognize(ctx, "voice"+ext, audio)
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("empty transcript")
	}
	return text, nil
}

// DetectFormat sniffs the container and returns the file extension the
// speech endpoint expects.
func DetectFormat(audio []byte) (string, error) {
	switch {
	case len(audio) >= 12 && bytes.Equal(audio[0:4], []byte("RIFF")) && bytes.Equal(audio[8:12], []byte("WAVE")):
		return ".wav", nil
	case bytes.HasPrefix(audio, []byte("OggS")):
		return ".ogg", nil
	case bytes.HasPrefix(audio, []byte("fLaC")):
		return ".flac", nil
	case bytes.HasPrefix(audio, []byte("ID3")),
		len(audio) >= 2 && audio[0] == 0xFF && audio[1]&0xE0 == 0xE0:
		return ".mp3", nil
	case bytes.HasPrefix(audio, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return ".webm", nil
	}
	return "", ErrUnknownFormat
}

// WhisperRecognizer uses an OpenAI-compatible /audio/transcriptions endpoint.
type WhisperRecognizer struct {
	client *openai.Client
	model  string
}

func NewWhisperRecognizer(client *openai.Client, model string) *WhisperRecognizer {
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperRecognizer{client: client, model: model}
}

func (w *WhisperRecognizer) Recognize(ctx context.Context, filename string, audio []byte) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
