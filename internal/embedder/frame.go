package embedder

import (
	"bytes"
	"image"
	"image/jpeg"

	_ "image/png" // camera gateways occasionally send PNG frames

	"golang.org/x/image/draw"
)

// jpegQuality for re-encoded frames. Detection tolerates compression well;
// upload size dominates scan latency on school networks.
const jpegQuality = 85

// Downscale shrinks a frame whose longer edge exceeds maxEdge, preserving
// aspect ratio. Frames already small enough, or bytes that do not decode
// as an image, are returned unchanged and left to the service to reject.
func Downscale(frame []byte, maxEdge int) []byte {
	if maxEdge <= 0 {
		return frame
	}

	src, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return frame
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	longer := w
	if h > longer {
		longer = h
	}
	if longer <= maxEdge {
		return frame
	}

	scale := float64(maxEdge) / float64(longer)
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return frame
	}
	return buf.Bytes()
}
