package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"lexibook/api/internal/textdoc"
)

// OpenAI implements Collaborator over chat completions.
type OpenAI struct {
	client     *openai.Client
	model      string
	targetLang string
}

func NewOpenAI(apiKey, baseURL, model, targetLang string) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai api key not configured")
	}
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		targetLang: targetLang,
	}, nil
}

var textExtensions = map[string]struct{}{
	".txt": {}, ".md": {}, ".markdown": {}, ".text": {},
}

// ExtractText handles plain-text formats locally; anything else is an
// unsupported format. Binary document parsing belongs to a dedicated
// extraction backend, not the chat API.
func (o *OpenAI) ExtractText(_ context.Context, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := textExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: unsupported format %q", ErrExtraction, ext)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrExtraction, filename)
	}
	return string(data), nil
}

func (o *OpenAI) TranslateParagraph(ctx context.Context, paragraph string, sentences []string) (ParagraphTranslation, error) {
	payload, _ := json.Marshal(map[string]any{
		"paragraph": paragraph,
		"sentences": sentences,
	})
	system := fmt.Sprintf(
		"You translate English study material into %s. Reply with JSON only: "+
			`{"paragraph": "<translated paragraph>", "sentences": ["<translation of each input sentence, same order>"]}`,
		o.targetLang)
	content, err := o.complete(ctx, system, string(payload))
	if err != nil {
		return ParagraphTranslation{}, fmt.Errorf("%w: paragraph: %v", ErrTranslation, err)
	}

	var result ParagraphTranslation
	if err := json.Unmarshal([]byte(stripFences(content)), &result); err != nil || result.Paragraph == "" {
		// Shape mismatch: keep the whole reply as the paragraph translation
		// and leave sentences empty, which downstream tolerates.
		return ParagraphTranslation{Paragraph: strings.TrimSpace(content)}, nil
	}
	return result, nil
}

func (o *OpenAI) TranslateWord(ctx context.Context, word, sentence string) (string, error) {
	system := fmt.Sprintf(
		"You are a dictionary for English learners. Given a word and the sentence it appears in, "+
			"reply with only the most fitting short %s translation of the word in that context. No explanation.",
		o.targetLang)
	prompt := fmt.Sprintf("Word: %s\nSentence: %s", word, sentence)
	content, err := o.complete(ctx, system, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: word %q: %v", ErrTranslation, word, err)
	}
	translation := strings.TrimSpace(content)
	if translation == "" {
		return "", fmt.Errorf("%w: word %q: empty reply", ErrTranslation, word)
	}
	return translation, nil
}

func (o *OpenAI) DefineWord(ctx context.Context, word, sentence string) (textdoc.Definition, error) {
	system := fmt.Sprintf(
		"You are a learner's dictionary. Reply with JSON only: "+
			`{"ipa": "...", "senses": [{"pos": "...", "def": "..."}], `+
			`"examples": [{"en": "...", "zh": "..."}], "phrases": ["..."]}. `+
			"Definitions and examples target %s speakers.",
		o.targetLang)
	prompt := fmt.Sprintf("Word: %s\nSentence: %s", word, sentence)
	content, err := o.complete(ctx, system, prompt)
	if err != nil {
		return textdoc.Definition{}, fmt.Errorf("%w: define %q: %v", ErrTranslation, word, err)
	}

	var def textdoc.Definition
	if err := json.Unmarshal([]byte(stripFences(content)), &def); err != nil || len(def.Senses) == 0 {
		// Response does not validate against the expected shape; degrade to
		// the raw text rather than discarding it.
		return textdoc.Definition{Raw: strings.TrimSpace(content)}, nil
	}
	def.Raw = ""
	return def, nil
}

func (o *OpenAI) AnalyzeGrammar(ctx context.Context, text string) (textdoc.GrammarAnalysis, error) {
	system := fmt.Sprintf(
		"You explain English grammar to %s speakers. Reply with JSON only: "+
			`{"structure": ["<clause-by-clause breakdown>"], `+
			`"grammarPoints": [{"point": "...", "desc": "..."}], "translation": "..."}`,
		o.targetLang)
	content, err := o.complete(ctx, system, text)
	if err != nil {
		return textdoc.GrammarAnalysis{}, fmt.Errorf("%w: analyze selection: %v", ErrTranslation, err)
	}

	var analysis textdoc.GrammarAnalysis
	if err := json.Unmarshal([]byte(stripFences(content)), &analysis); err != nil ||
		(len(analysis.Structure) == 0 && len(analysis.GrammarPoints) == 0 && analysis.Translation == "") {
		return textdoc.GrammarAnalysis{Raw: strings.TrimSpace(content)}, nil
	}
	analysis.Raw = ""
	return analysis, nil
}

func (o *OpenAI) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in reply")
	}
	return resp.Choices[0].Message.Content, nil
}

// stripFences unwraps ```json … ``` fencing that chat models add around
// JSON replies.
func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
