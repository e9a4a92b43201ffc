package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const elevenLabsURL = "https://api.elevenlabs.io/v1/text-to-speech/%s"

type ElevenLabsClient struct {
	apiKey  string
	voiceID string
	httpCli *http.Client
	baseURL string
}

func NewElevenLabsClient(apiKey, voiceID string) *ElevenLabsClient {
	return &ElevenLabsClient{
		apiKey:  apiKey,
		voiceID: voiceID,
		httpCli: &http.Client{Timeout: 5 * time.Minute},
		baseURL: elevenLabsURL,
	}
}

// TEXT → SPEECH
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, outPath string) error {
	url := fmt.Sprintf(c.baseURL, c.voiceID)

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("elevenlabs error: status %d: %s", resp.StatusCode, string(b))
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}

	return writeFile(outPath, resp.Body)
}

// writeFile streams r into path and removes the file if the copy fails.
func writeFile(path string, r io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return out.Close()
}
