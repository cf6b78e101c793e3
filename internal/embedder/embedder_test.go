package embedder

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tkaraca/facegate/internal/config"
)

func testClient(url string) *Client {
	return New(config.EmbedderConfig{
		URL:            url,
		TimeoutSeconds: 5,
		MaxFrameEdge:   1280,
	})
}

func TestDetectAndEmbed(t *testing.T) {
	var gotPath string
	var gotImage string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		var req struct {
			Image string `json:"image"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		gotImage = req.Image

		_ = json.NewEncoder(w).Encode(map[string]any{
			"faces": []map[string]any{
				{
					"embedding": []float32{0.1, 0.2, 0.3},
					"box":       [4]int{10, 110, 120, 20},
				},
				{
					// Detection without an embedding, dropped client-side.
					"embedding": []float32{},
					"box":       [4]int{0, 50, 50, 0},
				},
			},
		})
	}))
	defer server.Close()

	faces, err := testClient(server.URL).DetectAndEmbed(context.Background(), []byte("not-an-image"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/detect" {
		t.Errorf("path = %s, want /detect", gotPath)
	}
	if want := base64.StdEncoding.EncodeToString([]byte("not-an-image")); gotImage != want {
		t.Errorf("image payload = %q, want %q", gotImage, want)
	}

	if len(faces) != 1 {
		t.Fatalf("expected 1 usable face, got %d", len(faces))
	}
	if faces[0].Box.Top != 10 || faces[0].Box.Left != 20 {
		t.Errorf("unexpected box: %+v", faces[0].Box)
	}
	if len(faces[0].Embedding) != 3 {
		t.Errorf("unexpected embedding: %v", faces[0].Embedding)
	}
}

func TestDetectAndEmbedServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := testClient(server.URL).DetectAndEmbed(context.Background(), []byte("frame")); err == nil {
		t.Error("expected an error for a 503 response")
	}
}

func TestDetectAndEmbedNoFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"faces": []}`))
	}))
	defer server.Close()

	faces, err := testClient(server.URL).DetectAndEmbed(context.Background(), []byte("frame"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(faces) != 0 {
		t.Errorf("expected no faces, got %d", len(faces))
	}
}
