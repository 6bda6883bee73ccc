package v1

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// maxAnalysisImageBytes bounds uploads before decode; oversized photos are
// rejected rather than buffered.
const maxAnalysisImageBytes = 10 << 20

func (s *APIV1Service) SubmitAnalysis(c echo.Context) error {
	if s.AnalysisController == nil {
		return aiUnavailable()
	}
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required").SetInternal(err)
	}
	if fileHeader.Size > maxAnalysisImageBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image exceeds 10MB")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to open upload").SetInternal(err)
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxAnalysisImageBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read upload").SetInternal(err)
	}
	if len(image) > maxAnalysisImageBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image exceeds 10MB")
	}

	result, err := s.AnalysisController.Analyze(ctx, fileHeader.Header.Get("Content-Type"), image)
	if err != nil {
		return submissionError(err)
	}
	status := http.StatusOK
	if result.Queued {
		status = http.StatusAccepted
	}
	return c.JSON(status, result)
}

func (s *APIV1Service) GetAnalysisSnapshot(c echo.Context) error {
	if s.AnalysisController == nil {
		return aiUnavailable()
	}
	ctx := c.Request().Context()

	snapshot, ok := s.AnalysisController.Snapshot(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no analysis session")
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (s *APIV1Service) ResetAnalysis(c echo.Context) error {
	if s.AnalysisController == nil {
		return aiUnavailable()
	}
	ctx := c.Request().Context()

	if err := s.AnalysisController.Reset(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to reset analysis").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}
