package matching

import (
	"fmt"

	"skillswap-backend/internal/models"
)

const (
	fallbackTopScore  = 7.5
	fallbackScoreStep = 0.5
	fallbackMinScore  = 1.0
)

// fallbackMatches ranks candidates deterministically: received order, scores
// decreasing from 7.5 with a floor of 1.0. Used whenever the model is
// unavailable or returns garbage.
func fallbackMatches(current *models.User, candidates []models.User) []RankedMatch {
	matches := make([]RankedMatch, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]

		score := fallbackTopScore - float64(i)*fallbackScoreStep
		if score < fallbackMinScore {
			score = fallbackMinScore
		}

		complementary, mutual := complementarySkills(current, c)
		matches = append(matches, RankedMatch{
			UserID:              c.ID,
			CompatibilityScore:  score,
			Explanation:         fallbackExplanation(current, c, mutual),
			ComplementarySkills: complementary,
			MutualBenefit:       mutual,
			User:                summarize(c),
		})
	}
	return matches
}

func fallbackExplanation(current *models.User, candidate *models.User, mutual bool) string {
	teach := "a skill you want"
	if len(candidate.SkillsTeaching) > 0 {
		teach = candidate.SkillsTeaching[0].Name
	}
	if mutual {
		return fmt.Sprintf("%s teaches %s and is interested in what you offer, so you could swap directly.", candidate.Name, teach)
	}
	return fmt.Sprintf("%s teaches %s, which lines up with your learning goals.", candidate.Name, teach)
}

// complementarySkills lists pairings where one side teaches what the other
// wants to learn, and whether the benefit runs both ways.
func complementarySkills(a, b *models.User) ([]string, bool) {
	var pairs []string
	aGets, bGets := false, false

	for _, t := range b.SkillsTeaching {
		if a.WantsToLearn(t.Name) {
			aGets = true
			pairs = append(pairs, fmt.Sprintf("%s <-> %s", t.Name, firstTeachingSkill(a)))
		}
	}
	for _, t := range a.SkillsTeaching {
		if b.WantsToLearn(t.Name) {
			bGets = true
		}
	}

	return pairs, aGets && bGets
}

func firstTeachingSkill(u *models.User) string {
	if len(u.SkillsTeaching) == 0 {
		return "your skills"
	}
	return u.SkillsTeaching[0].Name
}

// fallbackPairAnalysis builds the explain payload without the model.
func fallbackPairAnalysis(current, target *models.User) Explanation {
	var matching []MatchingSkill
	for _, t := range target.SkillsTeaching {
		if current.WantsToLearn(t.Name) {
			matching = append(matching, MatchingSkill{
				Skill:      t.Name,
				User1Level: "wants to learn",
				User2Level: t.Proficiency,
			})
		}
	}
	for _, t := range current.SkillsTeaching {
		if target.WantsToLearn(t.Name) {
			matching = append(matching, MatchingSkill{
				Skill:      t.Name,
				User1Level: t.Proficiency,
				User2Level: "wants to learn",
			})
		}
	}

	complementary, mutual := complementarySkills(current, target)

	score := 4.0
	switch {
	case mutual:
		score = 8.0
	case len(matching) > 0:
		score = 6.5
	}

	summary := fmt.Sprintf("%s and %s have limited direct skill overlap, but an exchange could still be worthwhile.", current.Name, target.Name)
	if len(matching) > 0 {
		summary = fmt.Sprintf("%s and %s cover each other's learning goals across %d skill(s).", current.Name, target.Name, len(matching))
	}

	return Explanation{
		Source:              SourceFallback,
		CompatibilityScore:  score,
		Summary:             summary,
		MatchingSkills:      matching,
		ComplementarySkills: complementary,
		LearningPath:        "Alternate sessions so each of you teaches your strongest skill first.",
		EstimatedSessions:   3,
	}
}
