package ai

// GenerationConfig carries the sampling parameters applied to a single call.
// Zero values leave the provider default in place.
type GenerationConfig struct {
	Temperature     float32
	TopK            int32
	TopP            float32
	MaxOutputTokens int32

	// JSON asks the provider for a JSON-only response body.
	JSON bool
}

// ChatConfig is used for conversational replies.
func ChatConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 1024,
	}
}

// ItineraryConfig is used for structured itinerary generation. The output
// budget is sized for a multi-day plan with details on every activity.
func ItineraryConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.9,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 8192,
		JSON:            true,
	}
}

// DefaultModels is the ordered Gemini candidate list used when none is configured.
var DefaultModels = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
}
