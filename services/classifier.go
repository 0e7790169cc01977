// services/classifier.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"waste-rewards-system/models"

	"google.golang.org/genai"
)

// WasteClassifier analyzes the reporter's photo and produces the structured
// classification attached to a new report.
type WasteClassifier interface {
	ClassifyWaste(ctx context.Context, image []byte, mimeType string) (*models.ClassificationPayload, error)
}

// BinClassifier analyzes the collector's bin photo during verification.
type BinClassifier interface {
	VerifyBin(ctx context.Context, image []byte, mimeType string, vc BinContext) (*BinVerification, error)
}

// BinContext is the contextual metadata sent along with the collector's photo.
type BinContext struct {
	ExpectedColor string
	WasteType     string
	Location      string
	ReporterGPS   *models.GeoPoint
	CollectorGPS  models.GeoPoint
	GPSDistance   *float64 // meters; nil when the report carried no GPS fix
}

// BinVerification is the structured record expected back from the classifier
// during a collection verification.
type BinVerification struct {
	BinColorDetected string  `json:"binColorDetected"`
	BinColorMatch    bool    `json:"binColorMatch"`
	Confidence       float64 `json:"confidence"`
}

var codeFenceRe = regexp.MustCompile("(?i)```json|```")

// ExtractJSONObject locates the single JSON object inside free-form model
// output, which may be wrapped in Markdown code fences or prose. It slices
// from the first '{' to the last '}'.
func ExtractJSONObject(raw string) (string, error) {
	cleaned := strings.TrimSpace(codeFenceRe.ReplaceAllString(raw, ""))

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return "", ErrMalformedResponse
	}
	return cleaned[start : end+1], nil
}

// ParseClassification extracts and validates a classification payload from
// raw classifier output.
func ParseClassification(raw string) (*models.ClassificationPayload, error) {
	candidate, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var payload models.ClassificationPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &payload, nil
}

// ParseBinVerification extracts the bin verification record from raw
// classifier output.
func ParseBinVerification(raw string) (*BinVerification, error) {
	candidate, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var v BinVerification
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if v.BinColorDetected == "" {
		return nil, fmt.Errorf("%w: missing binColorDetected", ErrMalformedResponse)
	}
	return &v, nil
}

// GeminiClassifier calls the Gemini vision model. It implements both
// WasteClassifier and BinClassifier.
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

func NewGeminiClassifier(ctx context.Context) (*GeminiClassifier, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClassifier{client: client, model: model}, nil
}

func (g *GeminiClassifier) generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(image, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("classifier call failed: %w", err)
	}
	return resp.Text(), nil
}

// ClassifyWaste asks the model for waste type, quantity, confidence, bin
// color and the visual descriptors collectors later use to find the spot.
func (g *GeminiClassifier) ClassifyWaste(ctx context.Context, image []byte, mimeType string) (*models.ClassificationPayload, error) {
	prompt := `You are an expert in waste management and recycling. Analyze this image in detail and provide:
1. The type of waste (e.g., plastic, paper, glass, metal, organic)
2. An estimate of the quantity or amount (in kg or liters)
3. Your confidence level in this assessment (a number between 0 and 1)
4. The bin color: the dominant color of the waste container visible in the image. Options: "blue", "green", "black", "grey", "yellow", "red", "brown", "white", or "mixed" if multiple bins. If no bin is visible, use "none".
5. A detailed visual description for later verification: bin material/size/markings (excluding color), specific colors of the waste items, background and surroundings, ground surface, lighting and weather clues, and any distinctive features of the location.

The bin color will be used by collectors to verify they are at the correct location, so be precise.

Respond in JSON format like this:
{
  "wasteType": "type of waste",
  "quantity": "estimated quantity with unit",
  "confidence": 0.0,
  "binColor": "blue/green/black/grey/yellow/red/brown/white/mixed/none",
  "visualDescription": {
    "binDetails": "...",
    "wasteColors": "...",
    "surroundings": "...",
    "groundCondition": "...",
    "environmentalMarkers": "...",
    "uniqueIdentifiers": "..."
  }
}`

	text, err := g.generate(ctx, prompt, image, mimeType)
	if err != nil {
		return nil, err
	}
	return ParseClassification(text)
}

// VerifyBin asks the model whether the collector's photo shows a bin of the
// expected color.
func (g *GeminiClassifier) VerifyBin(ctx context.Context, image []byte, mimeType string, vc BinContext) (*BinVerification, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a waste collection verification expert. Analyze this image:\n\n")
	fmt.Fprintf(&sb, "Expected bin color: %s\n", vc.ExpectedColor)
	fmt.Fprintf(&sb, "Waste type: %s\n", vc.WasteType)
	fmt.Fprintf(&sb, "Location: %s\n", vc.Location)
	if vc.ReporterGPS != nil {
		fmt.Fprintf(&sb, "Reporter GPS: %.6f, %.6f (accuracy %.0fm)\n", vc.ReporterGPS.Lat, vc.ReporterGPS.Lng, vc.ReporterGPS.Accuracy)
	}
	fmt.Fprintf(&sb, "Collector GPS: %.6f, %.6f (accuracy %.0fm)\n", vc.CollectorGPS.Lat, vc.CollectorGPS.Lng, vc.CollectorGPS.Accuracy)
	if vc.GPSDistance != nil {
		fmt.Fprintf(&sb, "Distance between the two fixes: %.0fm\n", *vc.GPSDistance)
	}
	fmt.Fprintf(&sb, `
Verify:
1. Detect the bin color in the image (blue/green/black/grey/yellow/red/brown/white)
2. Does the bin color match the expected color %q?
3. Your confidence level (0-1)

The collector has already collected the waste from the bin; verify only that
the bin color matches what the reporter photographed.

Respond in JSON format:
{
  "binColorDetected": "detected color",
  "binColorMatch": true,
  "confidence": 0.0
}`, vc.ExpectedColor)

	text, err := g.generate(ctx, sb.String(), image, mimeType)
	if err != nil {
		return nil, err
	}
	return ParseBinVerification(text)
}
