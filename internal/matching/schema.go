package matching

import (
	"skillswap-backend/internal/llm"
)

var matchesSchema = &llm.Schema{
	Name:        "skill-matches",
	Description: "Ranked list of compatible swap partners",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"matches"},
		"properties": map[string]any{
			"matches": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"user_id", "compatibility_score", "explanation"},
					"properties": map[string]any{
						"user_id":             map[string]any{"type": "string"},
						"compatibility_score": map[string]any{"type": "number"},
						"explanation":         map[string]any{"type": "string"},
						"complementary_skills": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"mutual_benefit": map[string]any{"type": "boolean"},
					},
				},
			},
		},
	},
}

var explanationSchema = &llm.Schema{
	Name:        "match-explanation",
	Description: "Detailed pairwise skill match analysis",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"compatibility_score", "summary"},
		"properties": map[string]any{
			"compatibility_score": map[string]any{"type": "number"},
			"summary":             map[string]any{"type": "string"},
			"matching_skills": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"skill":       map[string]any{"type": "string"},
						"user1_level": map[string]any{"type": "string"},
						"user2_level": map[string]any{"type": "string"},
					},
				},
			},
			"complementary_skills": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"learning_path":      map[string]any{"type": "string"},
			"estimated_sessions": map[string]any{"type": "integer"},
		},
	},
}
