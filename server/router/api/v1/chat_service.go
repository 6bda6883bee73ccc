package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cropify/cropify/session"
	"github.com/cropify/cropify/store"
)

type submitChatRequest struct {
	ConversationUID string `json:"conversationUid"`
	Query           string `json:"query"`
}

type submitChatResponse struct {
	Queued  bool            `json:"queued"`
	Message *messagePayload `json:"message,omitempty"`
	HTML    string          `json:"html,omitempty"`
}

func (s *APIV1Service) SubmitChat(c echo.Context) error {
	if s.ChatController == nil {
		return aiUnavailable()
	}
	ctx := c.Request().Context()

	request := &submitChatRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if request.ConversationUID == "" || request.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "conversationUid and query are required")
	}

	result, err := s.ChatController.Submit(ctx, &session.ChatSubmit{
		ConversationUID: request.ConversationUID,
		Query:           request.Query,
	})
	if err != nil {
		return submissionError(err)
	}

	response := &submitChatResponse{Queued: result.Queued, HTML: result.HTML}
	if result.Message != nil {
		response.Message = convertMessage(result.Message)
	}
	status := http.StatusOK
	if result.Queued {
		status = http.StatusAccepted
	}
	return c.JSON(status, response)
}

type chatStatusResponse struct {
	State   string `json:"state"`
	Pending bool   `json:"pending"`
}

func (s *APIV1Service) GetChatStatus(c echo.Context) error {
	if s.ChatController == nil {
		return aiUnavailable()
	}
	ctx := c.Request().Context()

	pending, err := s.Queue.IsPending(ctx, store.SlotChat)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read queue").SetInternal(err)
	}
	return c.JSON(http.StatusOK, &chatStatusResponse{
		State:   string(s.ChatController.State()),
		Pending: pending,
	})
}
