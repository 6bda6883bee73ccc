package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cropify/cropify/internal/version"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *APIV1Service) GetHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, &healthResponse{
		Status:  "ok",
		Version: version.GetCurrentVersion(s.Profile.Mode),
	})
}

type networkStatusRequest struct {
	Online *bool `json:"online"`
}

type networkStatusResponse struct {
	Online bool `json:"online"`
}

// SetNetworkStatus records a connectivity report from a client. Going online
// triggers replay of queued requests.
func (s *APIV1Service) SetNetworkStatus(c echo.Context) error {
	request := &networkStatusRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if request.Online == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "online is required")
	}

	s.Monitor.SetOnline(*request.Online)
	return c.JSON(http.StatusOK, &networkStatusResponse{Online: s.Monitor.Online()})
}

func (s *APIV1Service) GetNetworkStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, &networkStatusResponse{Online: s.Monitor.Online()})
}
