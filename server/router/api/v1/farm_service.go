package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cropify/cropify/store"
)

type upsertFarmRequest struct {
	Name       *string  `json:"name"`
	Location   *string  `json:"location"`
	SoilType   *string  `json:"soilType"`
	PH         *float64 `json:"ph"`
	Moisture   *float64 `json:"moisture"`
	Nitrogen   *float64 `json:"nitrogen"`
	Phosphorus *float64 `json:"phosphorus"`
	Potassium  *float64 `json:"potassium"`
}

func (s *APIV1Service) CreateFarm(c echo.Context) error {
	ctx := c.Request().Context()

	request := &upsertFarmRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if request.Name == nil || *request.Name == "" || request.Location == nil || *request.Location == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and location are required")
	}

	create := &store.Farm{
		Name:     *request.Name,
		Location: *request.Location,
	}
	if request.SoilType != nil {
		create.SoilType = *request.SoilType
	}
	if request.PH != nil {
		create.PH = *request.PH
	}
	if request.Moisture != nil {
		create.Moisture = *request.Moisture
	}
	if request.Nitrogen != nil {
		create.Nitrogen = *request.Nitrogen
	}
	if request.Phosphorus != nil {
		create.Phosphorus = *request.Phosphorus
	}
	if request.Potassium != nil {
		create.Potassium = *request.Potassium
	}

	farm, err := s.Store.CreateFarm(ctx, create)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create farm").SetInternal(err)
	}
	return c.JSON(http.StatusOK, convertFarm(farm))
}

func (s *APIV1Service) ListFarms(c echo.Context) error {
	ctx := c.Request().Context()

	farms, err := s.Store.ListFarms(ctx, &store.FindFarm{})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list farms").SetInternal(err)
	}

	payload := make([]*farmPayload, 0, len(farms))
	for _, farm := range farms {
		payload = append(payload, convertFarm(farm))
	}
	return c.JSON(http.StatusOK, payload)
}

func (s *APIV1Service) GetFarm(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := farmID(c)
	if err != nil {
		return err
	}
	farms, err := s.Store.ListFarms(ctx, &store.FindFarm{ID: &id})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get farm").SetInternal(err)
	}
	if len(farms) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "farm not found")
	}
	return c.JSON(http.StatusOK, convertFarm(farms[0]))
}

func (s *APIV1Service) UpdateFarm(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := farmID(c)
	if err != nil {
		return err
	}
	request := &upsertFarmRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}

	farm, err := s.Store.UpdateFarm(ctx, &store.UpdateFarm{
		ID:         id,
		Name:       request.Name,
		Location:   request.Location,
		SoilType:   request.SoilType,
		PH:         request.PH,
		Moisture:   request.Moisture,
		Nitrogen:   request.Nitrogen,
		Phosphorus: request.Phosphorus,
		Potassium:  request.Potassium,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update farm").SetInternal(err)
	}
	return c.JSON(http.StatusOK, convertFarm(farm))
}

func (s *APIV1Service) DeleteFarm(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := farmID(c)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteFarm(ctx, &store.DeleteFarm{ID: id}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete farm").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func farmID(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid farm id")
	}
	return int32(id), nil
}
