package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

const diseaseSystemPrompt = `You are an AI assistant specialized in identifying crop diseases from images.

Analyze the provided image and identify potential diseases affecting the crop.
Provide a list of identified diseases along with a confidence score between 0 and 1 for each identification.
If the image does not show a plant or crop at all, return a single entry with diseaseName "Not a crop" and the confidence of that judgement.
If the plant looks healthy, return a single entry with diseaseName "Healthy" instead of inventing a disease.

Respond with ONLY a JSON array of objects, each containing "diseaseName" and "confidenceScore". No prose, no markdown fences.`

// Images larger than this edge are downscaled before upload to keep vision
// requests fast and cheap.
const maxImageEdge = 1024

// Finding is one disease candidate from the vision model.
type Finding struct {
	DiseaseName     string   `json:"diseaseName"`
	ConfidenceScore float64  `json:"confidenceScore"`
	Treatment       []string `json:"treatment"`
	Prevention      []string `json:"prevention"`
}

// DiseaseReport is the outcome of one image analysis.
type DiseaseReport struct {
	// CropDetected is false when the image does not show a plant at all.
	// Callers treat that differently from an analysis failure.
	CropDetected bool      `json:"cropDetected"`
	Healthy      bool      `json:"healthy"`
	Findings     []Finding `json:"findings"`
}

// IdentifyDisease analyzes a crop photo and returns disease findings with
// treatment and prevention guidance attached.
func (g *Gateway) IdentifyDisease(ctx context.Context, mimeType string, image []byte) (*DiseaseReport, error) {
	if len(image) == 0 {
		return nil, errors.New("empty image")
	}

	if err := g.analysisSem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "acquire analysis slot")
	}
	defer g.analysisSem.Release(1)

	start := time.Now()
	report, err := g.identify(ctx, mimeType, image)
	if g.exporter != nil {
		g.exporter.ObserveAnalysis(time.Since(start), err)
	}
	return report, err
}

func (g *Gateway) identify(ctx context.Context, mimeType string, image []byte) (*DiseaseReport, error) {
	image, mimeType = downscale(image, mimeType)

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}

	content, err := g.llm.ChatVision(ctx, diseaseSystemPrompt,
		"Identify diseases in this crop photo.", mimeType, image)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	if err := json.Unmarshal([]byte(extractJSON(content)), &findings); err != nil {
		slog.Warn("gateway: unparseable disease response", "content", content, "error", err)
		return nil, errors.Wrap(err, "parse disease response")
	}
	if len(findings) == 0 {
		return nil, errors.New("no findings in disease response")
	}

	report := &DiseaseReport{CropDetected: true}
	for _, f := range findings {
		name := strings.ToLower(strings.TrimSpace(f.DiseaseName))
		switch {
		case strings.Contains(name, "not a crop"), strings.Contains(name, "not a plant"), strings.Contains(name, "no plant"):
			report.CropDetected = false
			return report, nil
		case name == "healthy", strings.Contains(name, "no disease"):
			report.Healthy = true
			continue
		}
		f.Treatment = defaultTreatment
		f.Prevention = defaultPrevention
		report.Findings = append(report.Findings, f)
	}
	if len(report.Findings) == 0 {
		report.Healthy = true
	}
	return report, nil
}

// downscale re-encodes oversized photos as JPEG bounded to maxImageEdge.
// Undecodable input passes through unchanged and the model gets the original.
func downscale(image []byte, mimeType string) ([]byte, string) {
	img, err := imaging.Decode(bytes.NewReader(image))
	if err != nil {
		slog.Debug("gateway: image decode failed, sending original", "error", err)
		return image, mimeType
	}
	bounds := img.Bounds()
	if bounds.Dx() <= maxImageEdge && bounds.Dy() <= maxImageEdge {
		return image, mimeType
	}

	resized := imaging.Fit(img, maxImageEdge, maxImageEdge, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		slog.Debug("gateway: image re-encode failed, sending original", "error", err)
		return image, mimeType
	}
	slog.Debug("gateway: downscaled analysis image",
		"original_bytes", len(image),
		"resized_bytes", buf.Len(),
	)
	return buf.Bytes(), "image/jpeg"
}

// Generic agronomy guidance shown alongside every finding until per-disease
// advisories are curated.
var (
	defaultTreatment = []string{
		"Apply an appropriate fungicide every 7-10 days.",
		"Remove and destroy infected leaves.",
		"Ensure proper air circulation.",
	}
	defaultPrevention = []string{
		"Plant disease-resistant varieties.",
		"Water at the base of the plant to avoid wet foliage.",
		"Use mulch to prevent soil splash.",
	}
)
