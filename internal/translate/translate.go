// Package translate defines the translation collaborator used by the
// reformat pipeline and its implementations.
//
// A Translator call may fail for any reason. Callers treat a failure as
// local to the text being translated and keep the original.
package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/FocuswithJustin/redline/core/cache"
	"github.com/FocuswithJustin/redline/core/errors"
)

// Translator translates text into targetLocale. The source language is
// detected by the implementation. Errors match
// errors.ErrTranslationUnavailable.
type Translator interface {
	Translate(ctx context.Context, text, targetLocale string) (string, error)
}

// Func adapts a function to Translator. Errors it returns are wrapped as
// translation failures.
type Func func(ctx context.Context, text, targetLocale string) (string, error)

// Translate calls f.
func (f Func) Translate(ctx context.Context, text, targetLocale string) (string, error) {
	out, err := f(ctx, text, targetLocale)
	if err != nil {
		return "", asTranslationError("func", text, err)
	}
	return out, nil
}

// Identity returns its input unchanged.
type Identity struct{}

// Translate returns text.
func (Identity) Translate(_ context.Context, text, _ string) (string, error) {
	return text, nil
}

// WithTimeout bounds every call to t by d. A call that runs past the
// deadline fails.
func WithTimeout(t Translator, d time.Duration) Translator {
	if d <= 0 {
		return t
	}
	return &timeoutTranslator{next: t, timeout: d}
}

type timeoutTranslator struct {
	next    Translator
	timeout time.Duration
}

func (t *timeoutTranslator) Translate(ctx context.Context, text, targetLocale string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := t.next.Translate(ctx, text, targetLocale)
		done <- result{out, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", asTranslationError("timeout", text, r.err)
		}
		return r.out, nil
	case <-ctx.Done():
		return "", errors.NewTranslation("timeout", text, ctx.Err())
	}
}

// DefaultCacheSize bounds a translation cache created with size zero.
const DefaultCacheSize = 4096

// Cached memoizes successful translations per locale and text, keeping at
// most size entries. Failures are not cached, so a later call retries.
func Cached(t Translator, size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{next: t, entries: cache.NewLRU[cacheKey, string](size)}
}

type cacheKey struct {
	locale string
	text   string
}

// Cache is a memoizing Translator. It is safe for concurrent use.
type Cache struct {
	next    Translator
	entries *cache.LRU[cacheKey, string]
}

// Translate returns a cached translation or asks the wrapped translator.
func (c *Cache) Translate(ctx context.Context, text, targetLocale string) (string, error) {
	key := cacheKey{locale: targetLocale, text: text}
	if out, ok := c.entries.Get(key); ok {
		return out, nil
	}
	out, err := c.next.Translate(ctx, text, targetLocale)
	if err != nil {
		return "", err
	}
	c.entries.Put(key, out)
	return out, nil
}

// Hits reports how many calls were answered from the cache.
func (c *Cache) Hits() int {
	return int(c.entries.Stats().Hits)
}

// Settings selects and configures a Translator.
type Settings struct {
	Provider  string        // "identity" or "gemini"
	Model     string        // Gemini model name
	APIKey    string        // Gemini API key
	Timeout   time.Duration // Per-call deadline, zero for none
	Cache     bool          // Memoize repeated texts
	CacheSize int           // Maximum memoized texts, zero for the default
}

// New builds the Translator described by s.
func New(s Settings) (Translator, error) {
	var t Translator
	switch strings.ToLower(s.Provider) {
	case "", "identity":
		t = Identity{}
	case "gemini":
		g, err := NewGemini(s.APIKey, s.Model)
		if err != nil {
			return nil, err
		}
		t = g
	default:
		return nil, errors.NewValidation("translator.provider", fmt.Sprintf("unknown provider %q", s.Provider))
	}

	t = WithTimeout(t, s.Timeout)
	if s.Cache {
		t = Cached(t, s.CacheSize)
	}
	return t, nil
}

func asTranslationError(provider, text string, err error) error {
	var te *errors.TranslationError
	if errors.As(err, &te) {
		return err
	}
	return errors.NewTranslation(provider, text, err)
}
