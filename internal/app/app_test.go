package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mycobot/internal/config"
	"mycobot/internal/panels"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	faqPath := filepath.Join(dir, "offline_faq.json")
	require.NoError(t, os.WriteFile(faqPath, []byte(`{"watering":"water twice daily"}`), 0o644))
	return &config.Config{
		LLMProvider:    config.ProviderOpenAI,
		LLMAPIKey:      "k",
		LLMBaseURL:     baseURL,
		LLMModel:       "m",
		LLMTimeout:     time.Second,
		FAQFilePath:    faqPath,
		ChatLogPath:    filepath.Join(dir, "chat_history.csv"),
		ChatLogPolicy:  config.LogSuccess,
		FarmLogPath:    filepath.Join(dir, "farm_log.csv"),
		EnvLogPath:     filepath.Join(dir, "env_log.csv"),
		JournalLogPath: filepath.Join(dir, "journal_log.csv"),
		PhotoDir:       dir,
	}
}

func TestNew_WiresPanelsThroughDispatcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Use pasteurised wheat straw."}}]}`))
	}))
	defer srv.Close()

	a, err := New(testConfig(t, srv.URL), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, a.FAQ.Len())

	out, err := a.Panels.Run(context.Background(), "substrate", panels.Input{})
	require.NoError(t, err)
	assert.Equal(t, "Use pasteurised wheat straw.", out.Text)

	recs, err := a.ChatLog.Records()
	require.NoError(t, err)
	require.Len(t, recs, 1)

	digest, err := a.Digest(time.Now())
	require.NoError(t, err)
	assert.Contains(t, digest, "Questions answered: 1")
	assert.Contains(t, digest, "Agaricus: 1")
}

func TestNew_OfflineWhenEndpointDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	cfg.FAQFilePath = filepath.Join(t.TempDir(), "missing.json")
	a, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, a.FAQ.Len())

	assert.Equal(t, "remote call failed and no offline match found",
		a.Dispatcher.Ask(context.Background(), "How should I handle watering?"))
}

func TestDigestFunc_Sends(t *testing.T) {
	a, err := New(testConfig(t, "http://127.0.0.1:1"), nil)
	require.NoError(t, err)

	var sent string
	err = a.DigestFunc(func(ctx context.Context, text string) error {
		sent = text
		return nil
	})(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sent, "MycoBot daily digest for "))
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))

	l, err = NewLogger("warn", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	_, err = NewLogger("loud", false)
	require.Error(t, err)
}
