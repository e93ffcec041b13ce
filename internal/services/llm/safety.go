package llm

import (
	"google.golang.org/genai"

	"github.com/ternarybob/doceo/internal/common"
)

// buildSafetySettings maps the configured harm thresholds onto Gemini safety
// settings. All four harm categories are always set so a missing config value
// never silently falls back to the provider default.
func buildSafetySettings(cfg common.SafetyConfig) []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryDangerousContent, Threshold: harmThreshold(cfg.DangerousContent)},
		{Category: genai.HarmCategoryHateSpeech, Threshold: harmThreshold(cfg.HateSpeech)},
		{Category: genai.HarmCategoryHarassment, Threshold: harmThreshold(cfg.Harassment)},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: harmThreshold(cfg.SexuallyExplicit)},
	}
}

// harmThreshold converts a config threshold name to the Gemini constant.
// Unrecognized values resolve to the strictest setting.
func harmThreshold(level string) genai.HarmBlockThreshold {
	switch level {
	case "block_none":
		return genai.HarmBlockThresholdBlockNone
	case "block_medium_and_above":
		return genai.HarmBlockThresholdBlockMediumAndAbove
	case "block_only_high":
		return genai.HarmBlockThresholdBlockOnlyHigh
	default:
		return genai.HarmBlockThresholdBlockLowAndAbove
	}
}
