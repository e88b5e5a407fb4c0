package llm

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// WhisperTranscriber calls the OpenAI transcription endpoint with a fixed
// source language.
type WhisperTranscriber struct {
	client   *openai.Client
	model    string
	language string
}

func NewWhisperTranscriber(apiKey, model, language string, opts ...Option) *WhisperTranscriber {
	return &WhisperTranscriber{
		client:   newOpenAI(apiKey, opts),
		model:    model,
		language: language,
	}
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if filename == "" {
		filename = "audio.mp3"
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Language: w.language,
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
