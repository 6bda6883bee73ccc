package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *APIV1Service) GetWeather(c echo.Context) error {
	ctx := c.Request().Context()

	location := c.QueryParam("location")
	if location == "" {
		location = s.defaultFarmLocation()
	}
	if location == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "location is required")
	}
	return c.JSON(http.StatusOK, s.WeatherService.Current(ctx, location))
}

func (s *APIV1Service) GetMarketPrices(c echo.Context) error {
	ctx := c.Request().Context()

	location := c.QueryParam("location")
	if location == "" {
		location = s.defaultFarmLocation()
	}
	if location == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "location is required")
	}
	return c.JSON(http.StatusOK, s.MarketService.Prices(ctx, location))
}
