package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/pkg/logger"
	"github.com/okian/hackwreck/pkg/metrics"
)

// Gemini implements Analyzer on the Gemini API.
type Gemini struct {
	client   *genai.Client
	model    string
	ttsModel string
	voice    string
	log      logger.Logger
}

var _ Analyzer = (*Gemini)(nil)

// Option configures Gemini.
type Option func(*Gemini)

// WithModel selects the text model.
func WithModel(name string) Option {
	return func(g *Gemini) {
		if name != "" {
			g.model = name
		}
	}
}

// WithSpeech selects the speech model and prebuilt voice.
func WithSpeech(ttsModel, voice string) Option {
	return func(g *Gemini) {
		if ttsModel != "" {
			g.ttsModel = ttsModel
		}
		if voice != "" {
			g.voice = voice
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gemini) {
		if l != nil {
			g.log = l
		}
	}
}

// NewGemini creates a client authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g := &Gemini{
		client:   client,
		model:    "gemini-2.5-flash",
		ttsModel: "gemini-2.5-flash-preview-tts",
		voice:    "Kore",
		log:      logger.GetOrNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Gemini) AnalyzeRepo(ctx context.Context, url, place string) (model.RepoProfile, error) {
	text, err := g.generate(ctx, OpAnalyzeRepo, buildRepoPrompt(url, place), urlContext())
	if err != nil {
		return model.RepoProfile{}, err
	}
	profile, err := ParseRepoProfile(text)
	if err != nil {
		g.log.Warn(ctx, "unparseable repository analysis", logger.String("url", url), logger.Error(err))
		metrics.RecordLLMError(OpAnalyzeRepo)
		return model.RepoProfile{}, err
	}
	return profile, nil
}

func (g *Gemini) AssessProject(ctx context.Context, url string) (model.Assessment, error) {
	text, err := g.generate(ctx, OpAssessProject, buildAssessmentPrompt(url), urlContext())
	if err != nil {
		return model.Assessment{}, err
	}
	a, err := ParseAssessment(text)
	if err != nil {
		g.log.Warn(ctx, "unparseable project assessment", logger.String("url", url), logger.Error(err))
		metrics.RecordLLMError(OpAssessProject)
		return model.Assessment{}, err
	}
	return a, nil
}

func (g *Gemini) Suggest(ctx context.Context, in SuggestionInput) (string, error) {
	return g.generate(ctx, OpSuggest, buildSuggestionPrompt(in), &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
}

func (g *Gemini) Trends(ctx context.Context, in TrendInput) (string, error) {
	return g.generate(ctx, OpTrends, buildTrendsPrompt(in), nil)
}

func (g *Gemini) WreckMe(ctx context.Context) (string, error) {
	return g.generate(ctx, OpWreckMe, wreckPrompt, nil)
}

// Ping asks for a trivial completion to confirm the key and model work.
func (g *Gemini) Ping(ctx context.Context) error {
	_, err := g.generate(ctx, OpPing, "Reply with only: OK", nil)
	return err
}

func (g *Gemini) Speak(ctx context.Context, text string) ([]byte, error) {
	start := time.Now()
	defer func() { metrics.RecordLLMLatency(OpSpeak, float64(time.Since(start).Milliseconds())) }()

	resp, err := g.client.Models.GenerateContent(ctx, g.ttsModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &genai.SpeechConfig{
				VoiceConfig: &genai.VoiceConfig{
					PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
				},
			},
		})
	if err != nil {
		metrics.RecordLLMError(OpSpeak)
		return nil, fmt.Errorf("gemini %s: %w", OpSpeak, err)
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			data := part.InlineData
			if strings.Contains(strings.ToLower(data.MIMEType), "wav") {
				return data.Data, nil
			}
			return EncodeWAV(data.Data, sampleRate(data.MIMEType), pcmChannels, pcmBitsPerSample), nil
		}
	}
	metrics.RecordLLMError(OpSpeak)
	return nil, ErrNoAudio
}

func (g *Gemini) generate(ctx context.Context, op, prompt string, tool *genai.Tool) (string, error) {
	start := time.Now()
	defer func() { metrics.RecordLLMLatency(op, float64(time.Since(start).Milliseconds())) }()

	var cfg *genai.GenerateContentConfig
	if tool != nil {
		cfg = &genai.GenerateContentConfig{Tools: []*genai.Tool{tool}}
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, cfg)
	if err != nil {
		metrics.RecordLLMError(op)
		return "", fmt.Errorf("gemini %s: %w", op, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		metrics.RecordLLMError(op)
		return "", fmt.Errorf("gemini %s: %w", op, ErrEmptyResponse)
	}
	g.log.Debug(ctx, "model answered", logger.String("op", op), logger.Int("chars", len(text)),
		logger.Duration("took", time.Since(start)))
	return text, nil
}

func urlContext() *genai.Tool {
	return &genai.Tool{URLContext: &genai.URLContext{}}
}
