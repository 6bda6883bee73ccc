package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type generateSuggestionsRequest struct {
	FarmID int32 `json:"farmId"`
}

func (s *APIV1Service) GenerateSuggestions(c echo.Context) error {
	if s.SuggestionService == nil {
		return aiUnavailable()
	}
	ctx := c.Request().Context()

	request := &generateSuggestionsRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if request.FarmID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "farmId is required")
	}

	snapshot, err := s.SuggestionService.Generate(ctx, request.FarmID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate suggestions").SetInternal(err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (s *APIV1Service) GetLatestSuggestions(c echo.Context) error {
	if s.SuggestionService == nil {
		return aiUnavailable()
	}
	ctx := c.Request().Context()

	snapshot, ok := s.SuggestionService.Latest(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no suggestions generated yet")
	}
	return c.JSON(http.StatusOK, snapshot)
}
