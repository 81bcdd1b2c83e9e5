// Package advisors implements the LLM-backed providers consulted by the
// engine: life events, occupation estimates, housing suggestions and
// end-of-game recommendations. Every provider recovers from LLM and parse
// failures locally and returns its documented fallback.
package advisors

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"

	"github.com/jwebster45206/life-engine/internal/services"
	"github.com/jwebster45206/life-engine/pkg/chat"
	"github.com/jwebster45206/life-engine/pkg/finance"
)

//go:embed prompts/*.txt
var promptFS embed.FS

var prompts = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"euro": finance.FormatEuro,
	"inc":  func(i int) int { return i + 1 },
}).ParseFS(promptFS, "prompts/*.txt"))

// DefaultCacheTTL applies when a cache is set without a TTL.
const DefaultCacheTTL = 24 * time.Hour

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// base holds what every advisor needs to talk to an LLM.
type base struct {
	name     string
	llm      services.LLMService
	cache    services.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

func newBase(name string, llm services.LLMService, logger *slog.Logger) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		name:   name,
		llm:    llm,
		logger: logger.With("provider", name),
	}
}

// ask renders the system and user prompts and returns the model's reply with
// any markdown code fence removed.
func (b *base) ask(ctx context.Context, systemTmpl, userTmpl string, data any) (string, error) {
	system, err := render(systemTmpl, data)
	if err != nil {
		return "", err
	}
	user, err := render(userTmpl, data)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := b.llm.GetChatResponse(ctx, chat.SystemAndUser(system, user))
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", b.name, err)
	}
	b.logger.Debug("LLM answered", "duration", time.Since(start), "length", len(resp.Message))
	return stripCodeFence(resp.Message), nil
}

// cacheKey folds case so "Nurse" and "nurse " share an entry.
func (b *base) cacheKey(input string) string {
	return "advice:" + b.name + ":" + cases.Fold().String(strings.Join(strings.Fields(input), " "))
}

func (b *base) cached(ctx context.Context, input string, v any) bool {
	if b.cache == nil {
		return false
	}
	found, err := services.GetJSON(ctx, b.cache, b.cacheKey(input), v)
	if err != nil {
		b.logger.Warn("cache read failed", "error", err)
		return false
	}
	return found
}

func (b *base) store(ctx context.Context, input string, v any) {
	if b.cache == nil {
		return
	}
	ttl := b.cacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if err := services.SetJSON(ctx, b.cache, b.cacheKey(input), v, ttl); err != nil {
		b.logger.Warn("cache write failed", "error", err)
	}
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite
// being asked for raw JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimLeft(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// flexFloat accepts a JSON number, a numeric string or null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexString accepts a JSON string or number, e.g. a zip code sent as 10115.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	*f = flexString(strings.TrimSpace(string(data)))
	return nil
}
