package matching

import (
	"fmt"
	"strings"

	"skillswap-backend/internal/models"
)

func teachingList(u *models.User) string {
	if len(u.SkillsTeaching) == 0 {
		return "None listed"
	}
	parts := make([]string, len(u.SkillsTeaching))
	for i, s := range u.SkillsTeaching {
		parts[i] = fmt.Sprintf("%s (%s)", s.Name, s.Proficiency)
	}
	return strings.Join(parts, ", ")
}

func learningList(u *models.User) string {
	if len(u.SkillsLearning) == 0 {
		return "None listed"
	}
	parts := make([]string, len(u.SkillsLearning))
	for i, s := range u.SkillsLearning {
		parts[i] = s.Name
	}
	return strings.Join(parts, ", ")
}

func buildMatchPrompt(current *models.User, candidates []models.User, skillQuery string) string {
	var b strings.Builder

	b.WriteString("You are a skill-matching AI assistant for a skill exchange platform.\n\n")
	b.WriteString("CURRENT USER PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", current.Name)
	fmt.Fprintf(&b, "- Skills they can teach: %s\n", teachingList(current))
	fmt.Fprintf(&b, "- Skills they want to learn: %s\n", learningList(current))
	if skillQuery == "" {
		skillQuery = "General matching"
	}
	fmt.Fprintf(&b, "- Search query: %q\n\n", skillQuery)

	b.WriteString("POTENTIAL MATCHES:\n")
	for i := range candidates {
		c := &candidates[i]
		fmt.Fprintf(&b, "\n%d. User: %s (id: %s)\n", i+1, c.Name, c.ID)
		fmt.Fprintf(&b, "   - Can teach: %s\n", teachingList(c))
		fmt.Fprintf(&b, "   - Wants to learn: %s\n", learningList(c))
		fmt.Fprintf(&b, "   - Verified: %s\n", c.Verification.Status)
		fmt.Fprintf(&b, "   - Rating: %.1f/5\n", c.Stats.AvgRating)
	}

	b.WriteString(`
TASK:
Analyze compatibility and rank these users. Consider:
1. Complementary skills (what they teach vs what current user wants to learn)
2. Mutual exchange potential (both can teach each other)
3. Proficiency levels (ensure teacher is advanced enough)
4. Verification status and ratings

Return ONLY valid JSON (no markdown formatting) in this exact format:
{
  "matches": [
    {
      "user_id": "exact_user_id_from_list",
      "compatibility_score": 8.5,
      "explanation": "Brief natural explanation why they match",
      "complementary_skills": ["Skill1 <-> Skill2"],
      "mutual_benefit": true
    }
  ]
}

Rank by compatibility_score (0-10). Return top 10 matches only.`)

	return b.String()
}

func buildExplainPrompt(current, target *models.User) string {
	var b strings.Builder

	b.WriteString("Provide a detailed skill match analysis between two users.\n\n")
	fmt.Fprintf(&b, "USER 1 (%s):\n", current.Name)
	fmt.Fprintf(&b, "- Can teach: %s\n", teachingList(current))
	fmt.Fprintf(&b, "- Wants to learn: %s\n\n", learningList(current))
	fmt.Fprintf(&b, "USER 2 (%s):\n", target.Name)
	fmt.Fprintf(&b, "- Can teach: %s\n", teachingList(target))
	fmt.Fprintf(&b, "- Wants to learn: %s\n", learningList(target))

	b.WriteString(`
Provide detailed analysis in JSON format:
{
  "compatibility_score": 8.5,
  "summary": "One paragraph explaining the match",
  "matching_skills": [
    {"skill": "React", "user1_level": "wants to learn", "user2_level": "Expert"}
  ],
  "complementary_skills": ["Node.js <-> React"],
  "learning_path": "Suggested sequence of knowledge exchange",
  "estimated_sessions": 4
}`)

	return b.String()
}
