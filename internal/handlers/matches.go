package handlers

import (
	"net/http"

	"skillswap-backend/internal/common"
	"skillswap-backend/internal/matching"
	"skillswap-backend/internal/models"

	"github.com/labstack/echo/v4"
)

const matchCandidateLimit = 20

// MatchHandler serves the AI-assisted match endpoints.
type MatchHandler struct {
	common.ServerState
	Matcher *matching.Service
}

func NewMatchHandler(state common.ServerState, matcher *matching.Service) *MatchHandler {
	return &MatchHandler{
		ServerState: state,
		Matcher:     matcher,
	}
}

type FindMatchesRequest struct {
	SkillQuery string `json:"skill_query"`
	Filters    struct {
		Location     string `json:"location"`
		VerifiedOnly bool   `json:"verified_only"`
	} `json:"filters"`
}

// FindMatches ranks candidate users for the caller.
func (mh *MatchHandler) FindMatches(c echo.Context) error {
	user, ok := mh.getAuthenticatedUserFromJWT(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	req := new(FindMatchesRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	candidates, err := models.GetMatchCandidates(mh.DB, user.ID, models.CandidateFilters{
		SkillQuery:   req.SkillQuery,
		Location:     req.Filters.Location,
		VerifiedOnly: req.Filters.VerifiedOnly,
	}, matchCandidateLimit)
	if err != nil {
		c.Logger().Errorf("Failed to load match candidates: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to find matches")
	}

	if len(candidates) == 0 {
		return c.JSON(http.StatusOK, map[string]any{"matches": []matching.RankedMatch{}})
	}

	result := mh.Matcher.FindMatches(c.Request().Context(), user, candidates, req.SkillQuery)

	return c.JSON(http.StatusOK, map[string]any{
		"matches": result.Matches,
		"source":  result.Source,
	})
}

// ExplainMatch produces the detailed compatibility analysis for one pair.
func (mh *MatchHandler) ExplainMatch(c echo.Context) error {
	user, ok := mh.getAuthenticatedUserFromJWT(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	target, err := models.GetUserByID(mh.DB, c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	explanation := mh.Matcher.ExplainMatch(c.Request().Context(), user, target)

	return c.JSON(http.StatusOK, explanation)
}
