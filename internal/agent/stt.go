package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrUnintelligible is returned when the recognizer could not make out any
// speech. It is user-retryable, unlike a service error.
var ErrUnintelligible = errors.New("could not understand audio")

// STTClient transcribes a WAV-encoded buffer in a fixed spoken language.
type STTClient interface {
	Transcribe(ctx context.Context, audioData []byte) (string, error)
}

type whisperClient struct {
	serviceURL string
	language   string
	httpClient *http.Client
}

func NewWhisperClient(serviceURL, language string) STTClient {
	return &whisperClient{
		serviceURL: serviceURL,
		language:   language,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type sttResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (c *whisperClient) Transcribe(ctx context.Context, audioData []byte) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audioData); err != nil {
		return "", err
	}
	if err := writer.WriteField("language", c.language); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.serviceURL, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech service error: %w", err)
	}
	defer resp.Body.Close()

	// The recognizer reports audio it cannot parse as unprocessable.
	if resp.StatusCode == http.StatusUnprocessableEntity {
		return "", ErrUnintelligible
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("speech service error: %s - %s", resp.Status, string(respBody))
	}

	var result sttResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("speech service error: %w", err)
	}
	if result.Text == "" {
		return "", ErrUnintelligible
	}

	return result.Text, nil
}
