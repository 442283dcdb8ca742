package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/quizgrader/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// Gemini accepts at most 20MB of inline data per request.
const maxInlineAudioBytes = 20 << 20

var (
	ErrAIUnavailable       = errors.New("ai grader is not configured")
	ErrMalformedAIResponse = errors.New("malformed ai grader response")
)

// AIGrade is a score in [0,100] with free-text feedback.
type AIGrade struct {
	Score    float64
	Feedback string
}

// AIGrader scores open answers. Implementations may be slow and may fail;
// callers do not retry.
type AIGrader interface {
	GradeWriting(ctx context.Context, prompt, answer string) (AIGrade, error)
	GradeSpeaking(ctx context.Context, prompt, audioRef string) (AIGrade, error)
}

type GeminiLLMService struct {
	client     *genai.Client
	model      *genai.GenerativeModel
	httpClient *http.Client
	timeout    time.Duration
}

func NewGeminiLLMService(cfg *config.Config) (*GeminiLLMService, error) {
	svc := &GeminiLLMService{
		httpClient: &http.Client{Timeout: cfg.Gemini.Timeout},
		timeout:    cfg.Gemini.Timeout,
	}
	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Essay and speaking answers cannot be graded.")
		return svc, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.Gemini.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel(cfg.Gemini.Model)
	model.SetTemperature(0.2)

	svc.client = client
	svc.model = model
	return svc, nil
}

// Close releases the underlying Gemini client.
func (s *GeminiLLMService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *GeminiLLMService) GradeWriting(ctx context.Context, prompt, answer string) (AIGrade, error) {
	if s.model == nil {
		return AIGrade{}, ErrAIUnavailable
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.generate(ctx, "writing", genai.Text(buildWritingPrompt(prompt, answer)))
}

func (s *GeminiLLMService) GradeSpeaking(ctx context.Context, prompt, audioRef string) (AIGrade, error) {
	if s.model == nil {
		return AIGrade{}, ErrAIUnavailable
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	audio, mimeType, err := s.fetchAudioData(ctx, audioRef)
	if err != nil {
		log.Error().Err(err).Str("audioRef", audioRef).Msg("Failed to fetch audio for scoring")
		return AIGrade{}, err
	}
	return s.generate(ctx, "speaking",
		genai.Blob{MIMEType: mimeType, Data: audio},
		genai.Text(buildSpeakingPrompt(prompt)),
	)
}

func (s *GeminiLLMService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GeminiLLMService) generate(ctx context.Context, kind string, parts ...genai.Part) (AIGrade, error) {
	resp, err := s.model.GenerateContent(ctx, parts...)
	if err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("Gemini API error during scoring")
		return AIGrade{}, fmt.Errorf("gemini api: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Str("kind", kind).Msg("Gemini returned no candidates or parts in response.")
		return AIGrade{}, fmt.Errorf("%w: no content", ErrMalformedAIResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return AIGrade{}, fmt.Errorf("%w: no text content", ErrMalformedAIResponse)
	}

	grade, err := parseAIGrade(text.String())
	if err != nil {
		log.Warn().Err(err).Str("kind", kind).Str("rawResponse", text.String()).Msg("Failed to parse score and feedback from Gemini response")
		return AIGrade{}, err
	}
	return grade, nil
}

const outputFormatInstruction = `
Score the answer from 0 to 100, where 100 is a flawless answer for the task.

Format your response strictly as:
Score: [number between 0 and 100]
Feedback:
[Concise, constructive feedback: strong points, specific errors with a short correction, one or two
suggestions for improvement]
`

func buildWritingPrompt(task, answer string) string {
	var b strings.Builder
	b.WriteString("You are an experienced language teacher grading a learner's written answer.\n")
	b.WriteString("Evaluate grammar, vocabulary, coherence and how well the answer fulfils the task.\n\n")
	b.WriteString("Task:\n---\n")
	b.WriteString(task)
	b.WriteString("\n---\n\n")
	b.WriteString("Learner's answer:\n---\n")
	b.WriteString(answer)
	b.WriteString("\n---\n")
	b.WriteString(outputFormatInstruction)
	return b.String()
}

func buildSpeakingPrompt(task string) string {
	var b strings.Builder
	b.WriteString("You are an experienced language teacher grading a learner's spoken answer.\n")
	b.WriteString("The audio above is the learner's recording. First transcribe it silently, then evaluate ")
	b.WriteString("pronunciation, fluency, grammar, vocabulary and how well the answer fulfils the task.\n\n")
	b.WriteString("Task:\n---\n")
	b.WriteString(task)
	b.WriteString("\n---\n")
	b.WriteString(outputFormatInstruction)
	return b.String()
}

// parseAIGrade reads the "Score:" and "Feedback:" sections of a model reply
// and clamps the score to [0,100].
func parseAIGrade(raw string) (AIGrade, error) {
	scoreStr, feedback, err := parseScoreAndFeedback(raw)
	if err != nil {
		return AIGrade{}, err
	}
	score, err := strconv.ParseFloat(strings.TrimSuffix(scoreStr, "/100"), 64)
	if err != nil {
		return AIGrade{}, fmt.Errorf("%w: score value %q is not a number", ErrMalformedAIResponse, scoreStr)
	}
	if score > MaxAnswerScore {
		score = MaxAnswerScore
	}
	if score < 0 {
		score = 0
	}
	return AIGrade{Score: score, Feedback: feedback}, nil
}

func parseScoreAndFeedback(rawResponse string) (scoreStr string, feedbackStr string, err error) {
	scorePrefix := "Score:"
	feedbackPrefix := "Feedback:"

	scoreIndex := strings.Index(rawResponse, scorePrefix)
	if scoreIndex == -1 {
		return "", "", fmt.Errorf("%w: missing %q", ErrMalformedAIResponse, scorePrefix)
	}

	rest := rawResponse[scoreIndex+len(scorePrefix):]
	line := rest
	if nl := strings.Index(rest, "\n"); nl != -1 {
		line = rest[:nl]
	}
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "", "", fmt.Errorf("%w: empty score", ErrMalformedAIResponse)
	}
	scoreStr = strings.Trim(parts[0], "*[]")

	if feedbackIndex := strings.Index(rawResponse, feedbackPrefix); feedbackIndex > scoreIndex {
		feedbackStr = strings.TrimSpace(rawResponse[feedbackIndex+len(feedbackPrefix):])
	} else if nl := strings.Index(rest, "\n"); nl != -1 {
		feedbackStr = strings.TrimSpace(rest[nl+1:])
	}
	return scoreStr, feedbackStr, nil
}

var audioExtensionTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".webm": "audio/webm",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
}

// fetchAudioData downloads the recording behind audioRef, typically a
// presigned storage URL, and determines its MIME type.
func (s *GeminiLLMService) fetchAudioData(ctx context.Context, audioRef string) ([]byte, string, error) {
	u, err := url.Parse(audioRef)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, "", fmt.Errorf("unsupported audio reference %q", audioRef)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioRef, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build audio request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch audio (status %d)", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxInlineAudioBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read audio data: %w", err)
	}
	if len(data) > maxInlineAudioBytes {
		return nil, "", fmt.Errorf("audio exceeds %d bytes", maxInlineAudioBytes)
	}
	if len(data) == 0 {
		return nil, "", errors.New("audio is empty")
	}

	mimeType := audioMIMEType(resp.Header.Get("Content-Type"), u.Path)
	if mimeType == "" {
		return nil, "", fmt.Errorf("could not determine audio MIME type for %q", u.Path)
	}
	return data, mimeType, nil
}

func audioMIMEType(contentType, path string) string {
	if contentType != "" {
		if parsed, _, err := mime.ParseMediaType(contentType); err == nil && strings.HasPrefix(parsed, "audio/") {
			return parsed
		}
	}
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := audioExtensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); strings.HasPrefix(t, "audio/") {
		return t
	}
	return ""
}
