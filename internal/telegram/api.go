package telegram

import (
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type botAPISender struct{ api *tgbotapi.BotAPI }

func (s botAPISender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return s.api.Send(c)
}

// fetcher downloads an uploaded file (voice note, photo) by its file ID.
type fetcher interface {
	Fetch(fileID string) ([]byte, error)
}

// maxDownload caps uploads read into memory.
const maxDownload = 20 << 20

type botAPIFetcher struct {
	api    *tgbotapi.BotAPI
	client *http.Client
}

func newBotAPIFetcher(api *tgbotapi.BotAPI) botAPIFetcher {
	return botAPIFetcher{api: api, client: &http.Client{Timeout: 60 * time.Second}}
}

func (f botAPIFetcher) Fetch(fileID string) ([]byte, error) {
	file, err := f.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	resp, err := f.client.Get(file.Link(f.api.Token))
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	return data, nil
}
