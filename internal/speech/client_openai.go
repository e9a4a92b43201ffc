package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAITTS struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
}

func NewOpenAITTS(apiKey, model, voice string) *OpenAITTS {
	return &OpenAITTS{
		client: openai.NewClient(apiKey),
		model:  openai.SpeechModel(model),
		voice:  openai.SpeechVoice(voice),
	}
}

func (t *OpenAITTS) Synthesize(ctx context.Context, text, outPath string) error {
	resp, err := t.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          t.model,
		Input:          text,
		Voice:          t.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}

	return writeFile(outPath, resp)
}
