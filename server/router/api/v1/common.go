package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cropify/cropify/session"
	"github.com/cropify/cropify/store"
)

// Wire representations. Store types stay tag-free; the API owns its shapes.

type conversationPayload struct {
	UID          string `json:"uid"`
	Title        string `json:"title"`
	TitleSource  string `json:"titleSource"`
	MessageCount int32  `json:"messageCount"`
	CreatedTs    int64  `json:"createdTs"`
	UpdatedTs    int64  `json:"updatedTs"`
}

func convertConversation(c *store.Conversation) *conversationPayload {
	return &conversationPayload{
		UID:          c.UID,
		Title:        c.Title,
		TitleSource:  string(c.TitleSource),
		MessageCount: c.MessageCount,
		CreatedTs:    c.CreatedTs,
		UpdatedTs:    c.UpdatedTs,
	}
}

type messagePayload struct {
	ID        int64  `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedTs int64  `json:"createdTs"`
}

func convertMessage(m *store.Message) *messagePayload {
	return &messagePayload{
		ID:        m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedTs: m.CreatedTs,
	}
}

type farmPayload struct {
	ID         int32   `json:"id"`
	Name       string  `json:"name"`
	Location   string  `json:"location"`
	SoilType   string  `json:"soilType"`
	PH         float64 `json:"ph"`
	Moisture   float64 `json:"moisture"`
	Nitrogen   float64 `json:"nitrogen"`
	Phosphorus float64 `json:"phosphorus"`
	Potassium  float64 `json:"potassium"`
	CreatedTs  int64   `json:"createdTs"`
	UpdatedTs  int64   `json:"updatedTs"`
}

func convertFarm(f *store.Farm) *farmPayload {
	return &farmPayload{
		ID:         f.ID,
		Name:       f.Name,
		Location:   f.Location,
		SoilType:   f.SoilType,
		PH:         f.PH,
		Moisture:   f.Moisture,
		Nitrogen:   f.Nitrogen,
		Phosphorus: f.Phosphorus,
		Potassium:  f.Potassium,
		CreatedTs:  f.CreatedTs,
		UpdatedTs:  f.UpdatedTs,
	}
}

type transactionPayload struct {
	ID         int64  `json:"id"`
	Kind       string `json:"kind"`
	Category   string `json:"category"`
	Amount     int64  `json:"amount"`
	Note       string `json:"note"`
	OccurredTs int64  `json:"occurredTs"`
	CreatedTs  int64  `json:"createdTs"`
}

func convertTransaction(t *store.Transaction) *transactionPayload {
	return &transactionPayload{
		ID:         t.ID,
		Kind:       string(t.Kind),
		Category:   t.Category,
		Amount:     t.Amount,
		Note:       t.Note,
		OccurredTs: t.OccurredTs,
		CreatedTs:  t.CreatedTs,
	}
}

// submissionError maps session-layer errors to HTTP status codes.
func submissionError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, session.ErrBusy):
		return echo.NewHTTPError(http.StatusConflict, "a request is already in flight")
	case errors.Is(err, session.ErrStale):
		return echo.NewHTTPError(http.StatusConflict, "request superseded by a newer one")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// aiUnavailable is returned by inference endpoints when AI is disabled.
func aiUnavailable() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusServiceUnavailable, "AI features are disabled")
}
