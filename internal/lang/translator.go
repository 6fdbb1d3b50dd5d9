package lang

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const (
	defaultTranslateBaseURL = "https://translation.googleapis.com/language/translate/v2"
	translationCacheSize    = 200
)

// Translator translates text to English via the Google Translate v2 API.
// Unconfigured or failing translation returns the input unchanged, so the
// pipeline degrades to analyzing the original text.
type Translator struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *lru.Cache[string, string]
	logger     *zap.Logger
}

// NewTranslator creates a translator. An empty API key disables it.
func NewTranslator(apiKey, baseURL string, timeout time.Duration, logger *zap.Logger) *Translator {
	if baseURL == "" {
		baseURL = defaultTranslateBaseURL
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	cache, _ := lru.New[string, string](translationCacheSize)
	return &Translator{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		logger:     logger,
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// ToEnglish translates text to English. Results are cached by content hash.
func (t *Translator) ToEnglish(ctx context.Context, text string) string {
	if t.apiKey == "" || text == "" {
		return text
	}

	key := contentKey(text)
	if cached, ok := t.cache.Get(key); ok {
		return cached
	}

	payload, err := json.Marshal(translateRequest{Q: text, Target: "en", Format: "text"})
	if err != nil {
		return text
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"?key="+t.apiKey, bytes.NewReader(payload))
	if err != nil {
		return text
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Warn("translation request failed", zap.Error(err))
		return text
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.logger.Warn("translation unexpected status", zap.Int("status", resp.StatusCode))
		return text
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return text
	}

	var parsed translateResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Data.Translations) == 0 {
		t.logger.Warn("translation parse failed", zap.Error(err))
		return text
	}

	translated := html.UnescapeString(parsed.Data.Translations[0].TranslatedText)
	if translated == "" {
		return text
	}

	t.cache.Add(key, translated)
	return translated
}

func contentKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
