// Package embedder is the HTTP client for the external face
// detection/embedding service. The service receives a camera frame and
// returns one embedding plus bounding box per detected face.
package embedder

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tkaraca/facegate/internal/config"
	"github.com/tkaraca/facegate/internal/recognition"
)

// Client calls the embedder service. It implements recognition.Detector.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	maxFrameEdge int
}

// New creates an embedder client from configuration.
func New(cfg config.EmbedderConfig) *Client {
	return &Client{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		maxFrameEdge: cfg.MaxFrameEdge,
	}
}

type detectRequest struct {
	Image string `json:"image"`
}

type detectResponse struct {
	Faces []detectedFace `json:"faces"`
}

type detectedFace struct {
	Embedding []float32 `json:"embedding"`
	// Box is [top, right, bottom, left] in pixel coordinates.
	Box [4]int `json:"box"`
}

// DetectAndEmbed uploads a frame and returns the detected faces. Large
// frames are downscaled first; the service rescales boxes on its side so
// coordinates stay in the uploaded frame's space.
func (c *Client) DetectAndEmbed(ctx context.Context, frame []byte) ([]recognition.DetectedFace, error) {
	frame = Downscale(frame, c.maxFrameEdge)

	body, err := json.Marshal(detectRequest{
		Image: base64.StdEncoding.EncodeToString(frame),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding detect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating detect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling embedder service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedder service returned %d: %s", resp.StatusCode, payload)
	}

	var decoded detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding detect response: %w", err)
	}

	faces := make([]recognition.DetectedFace, 0, len(decoded.Faces))
	for _, f := range decoded.Faces {
		if len(f.Embedding) == 0 {
			continue
		}
		faces = append(faces, recognition.DetectedFace{
			Embedding: f.Embedding,
			Box: recognition.BoundingBox{
				Top:    f.Box[0],
				Right:  f.Box[1],
				Bottom: f.Box[2],
				Left:   f.Box[3],
			},
		})
	}
	return faces, nil
}
