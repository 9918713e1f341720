// Package matching ranks potential swap partners. Ranking is delegated to a
// generative model; every failure path degrades to a deterministic local
// ranking so the endpoint never errors for a non-empty candidate list.
package matching

import (
	"skillswap-backend/internal/models"
)

// Source tells the client which ranking produced the result.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// RankedMatch is one ranked candidate.
type RankedMatch struct {
	UserID              string            `json:"user_id"`
	CompatibilityScore  float64           `json:"compatibility_score"`
	Explanation         string            `json:"explanation"`
	ComplementarySkills []string          `json:"complementary_skills"`
	MutualBenefit       bool              `json:"mutual_benefit"`
	User                *CandidateSummary `json:"user,omitempty"`
}

// CandidateSummary is the public slice of a candidate's profile attached to
// each match.
type CandidateSummary struct {
	ID                 string                 `json:"id"`
	Name               string                 `json:"name"`
	AvatarURL          string                 `json:"avatar_url"`
	Bio                string                 `json:"bio"`
	Location           models.Location        `json:"location"`
	SkillsTeaching     []models.SkillTeaching `json:"skills_teaching"`
	VerificationBadges []string               `json:"verification_badges,omitempty"`
	AvgRating          float64                `json:"avg_rating"`
	TotalSwaps         int                    `json:"total_swaps"`
}

// Result is a ranked candidate list plus its provenance.
type Result struct {
	Source  Source        `json:"source"`
	Matches []RankedMatch `json:"matches"`
}

// MatchingSkill pairs one skill with each side's relationship to it.
type MatchingSkill struct {
	Skill      string `json:"skill"`
	User1Level string `json:"user1_level"`
	User2Level string `json:"user2_level"`
}

// Explanation is the detailed pairwise analysis for the explain endpoint.
type Explanation struct {
	Source              Source          `json:"source"`
	CompatibilityScore  float64         `json:"compatibility_score"`
	Summary             string          `json:"summary"`
	MatchingSkills      []MatchingSkill `json:"matching_skills"`
	ComplementarySkills []string        `json:"complementary_skills"`
	LearningPath        string          `json:"learning_path"`
	EstimatedSessions   int             `json:"estimated_sessions"`
}

func summarize(u *models.User) *CandidateSummary {
	return &CandidateSummary{
		ID:                 u.ID,
		Name:               u.Name,
		AvatarURL:          u.AvatarURL,
		Bio:                u.Bio,
		Location:           u.Location,
		SkillsTeaching:     u.SkillsTeaching,
		VerificationBadges: u.Verification.Badges,
		AvgRating:          u.Stats.AvgRating,
		TotalSwaps:         u.Stats.TotalSwaps,
	}
}
