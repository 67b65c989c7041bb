// Package voice turns recorded audio into pending consultation input.
package voice

import (
	"context"
	"fmt"
	"os"
	"sync"

	"rural-health-assistant/internal/agent"
)

// Pipeline writes audio to a scoped temporary file, hands it to the
// speech-to-text service and parks the transcript in a one-shot slot until
// the composing input consumes it.
type Pipeline struct {
	stt agent.STTClient

	mu      sync.Mutex
	pending string
}

func NewPipeline(stt agent.STTClient) *Pipeline {
	return &Pipeline{stt: stt}
}

// Transcribe processes one finite recording. The temporary file is removed
// on every exit path. On success the transcript is stored as the pending
// input and also returned.
func (p *Pipeline) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio recording")
	}

	tmp, err := os.CreateTemp("", "voice-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp audio file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp audio file: %w", err)
	}

	buf, err := os.ReadFile(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("read temp audio file: %w", err)
	}

	text, err := p.stt.Transcribe(ctx, buf)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.pending = text
	p.mu.Unlock()
	return text, nil
}

// TakePending returns the pending transcript and clears it, so it is not
// reapplied on the next render cycle.
func (p *Pipeline) TakePending() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	text := p.pending
	p.pending = ""
	return text
}
