package translate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/FocuswithJustin/redline/core/errors"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

const geminiPrompt = "Translate the following text into the language with locale code %s. " +
	"Detect the source language yourself. Reply with the translation only, " +
	"without quotes, notes or explanations. Keep numbers and punctuation " +
	"as they are.\n\n%s"

// generateFunc sends one prompt to a model and returns the reply text.
type generateFunc func(ctx context.Context, model, prompt string) (string, error)

// Gemini translates through the Gemini API.
type Gemini struct {
	apiKey string
	model  string

	mu       sync.Mutex
	client   *genai.Client
	generate generateFunc
}

// NewGemini returns a Gemini translator. The client is created on the first
// call.
func NewGemini(apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.NewValidation("translator.api_key", "gemini requires an API key")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	g := &Gemini{apiKey: apiKey, model: model}
	g.generate = g.generateContent
	return g, nil
}

// Model returns the model name in use.
func (g *Gemini) Model() string { return g.model }

// Translate asks the model for a translation of text.
func (g *Gemini) Translate(ctx context.Context, text, targetLocale string) (string, error) {
	core := strings.TrimSpace(text)
	out, err := g.generate(ctx, g.model, fmt.Sprintf(geminiPrompt, targetLocale, core))
	if err != nil {
		return "", errors.NewTranslation("gemini", text, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.NewTranslation("gemini", text, fmt.Errorf("empty response from %s", g.model))
	}
	// Models drop leading and trailing whitespace; runs rely on it.
	lead := text[:strings.Index(text, core)]
	trail := text[len(lead)+len(core):]
	return lead + out + trail, nil
}

func (g *Gemini) generateContent(ctx context.Context, model, prompt string) (string, error) {
	client, err := g.getOrCreateClient(ctx)
	if err != nil {
		return "", err
	}
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (g *Gemini) getOrCreateClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}
	g.client = client
	return client, nil
}
