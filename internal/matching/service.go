package matching

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"skillswap-backend/internal/llm"
	"skillswap-backend/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"
)

const (
	requestTimeout = 20 * time.Second
	cacheTTL       = 10 * time.Minute
	maxTokens      = 2048
	temperature    = 0.7
)

// Service ranks candidates with the model provider, caching results in redis
// when it is configured. A nil provider means every request uses the
// fallback ranking.
type Service struct {
	provider llm.Provider
	redis    *redis.Client
	logger   echo.Logger
}

func NewService(provider llm.Provider, redisClient *redis.Client, logger echo.Logger) *Service {
	return &Service{
		provider: provider,
		redis:    redisClient,
		logger:   logger,
	}
}

// FindMatches ranks the candidates for the current user. It is total for a
// non-empty candidate list: model failures degrade to the deterministic
// fallback instead of surfacing an error.
func (s *Service) FindMatches(ctx context.Context, current *models.User, candidates []models.User, skillQuery string) Result {
	if len(candidates) == 0 {
		return Result{Source: SourceAI, Matches: []RankedMatch{}}
	}

	cacheKey := findCacheKey(current.ID, skillQuery, candidates)
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		return cached
	}

	result := s.rankWithModel(ctx, current, candidates, skillQuery)
	if result == nil {
		return Result{Source: SourceFallback, Matches: fallbackMatches(current, candidates)}
	}

	s.cacheSet(ctx, cacheKey, *result)
	return *result
}

func (s *Service) rankWithModel(ctx context.Context, current *models.User, candidates []models.User, skillQuery string) *Result {
	if s.provider == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := s.provider.Generate(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildMatchPrompt(current, candidates, skillQuery)}},
		Schema:      matchesSchema,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		s.logger.Warnf("match ranking failed, using fallback: %v", err)
		return nil
	}

	matches, err := parseMatches(resp.Content, candidates)
	if err != nil {
		s.logger.Warnf("match response unusable, using fallback: %v", err)
		return nil
	}
	if len(matches) == 0 {
		return nil
	}

	return &Result{Source: SourceAI, Matches: matches}
}

// ExplainMatch produces the detailed pairwise analysis, with the same
// fallback discipline as FindMatches.
func (s *Service) ExplainMatch(ctx context.Context, current, target *models.User) Explanation {
	if s.provider == nil {
		return fallbackPairAnalysis(current, target)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := s.provider.Generate(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildExplainPrompt(current, target)}},
		Schema:      explanationSchema,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		s.logger.Warnf("match explanation failed, using fallback: %v", err)
		return fallbackPairAnalysis(current, target)
	}

	var explanation Explanation
	if err := json.Unmarshal(extractJSON(resp.Content), &explanation); err != nil {
		s.logger.Warnf("match explanation unusable, using fallback: %v", err)
		return fallbackPairAnalysis(current, target)
	}
	explanation.Source = SourceAI
	return explanation
}

// parseMatches extracts the ranked list from the model output, dropping
// entries whose user_id is not one of the offered candidates and clamping
// scores to the documented 0-10 range.
func parseMatches(raw json.RawMessage, candidates []models.User) ([]RankedMatch, error) {
	content := extractJSON(raw)

	matchesJSON := gjson.GetBytes(content, "matches")
	if !matchesJSON.IsArray() {
		return nil, fmt.Errorf("response has no matches array")
	}

	var parsed struct {
		Matches []RankedMatch `json:"matches"`
	}
	if err := json.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal matches: %w", err)
	}

	byID := make(map[string]*models.User, len(candidates))
	for i := range candidates {
		byID[candidates[i].ID] = &candidates[i]
	}

	matches := make([]RankedMatch, 0, len(parsed.Matches))
	for _, m := range parsed.Matches {
		candidate, known := byID[m.UserID]
		if !known {
			continue
		}
		if m.CompatibilityScore < 0 {
			m.CompatibilityScore = 0
		}
		if m.CompatibilityScore > 10 {
			m.CompatibilityScore = 10
		}
		m.User = summarize(candidate)
		matches = append(matches, m)
	}
	return matches, nil
}

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)\\n```")

// extractJSON strips a markdown code fence when the model wraps its JSON in
// one despite instructions.
func extractJSON(raw json.RawMessage) json.RawMessage {
	trimmed := strings.TrimSpace(string(raw))
	if m := codeFenceRe.FindStringSubmatch(trimmed); m != nil {
		return json.RawMessage(m[1])
	}
	return json.RawMessage(trimmed)
}

func findCacheKey(userID, skillQuery string, candidates []models.User) string {
	h := sha256.New()
	h.Write([]byte(skillQuery))
	for i := range candidates {
		h.Write([]byte(candidates[i].ID))
	}
	return fmt.Sprintf("match:find:%s:%x", userID, h.Sum(nil)[:8])
}

func (s *Service) cacheGet(ctx context.Context, key string) (Result, bool) {
	if s.redis == nil {
		return Result{}, false
	}
	payload, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return Result{}, false
	}
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return Result{}, false
	}
	return result, true
}

func (s *Service) cacheSet(ctx context.Context, key string, result Result) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, payload, cacheTTL).Err(); err != nil {
		s.logger.Warnf("failed to cache match result: %v", err)
	}
}
