package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/cropify/cropify/store"
)

// defaultConversationTitle is shown until the first exchange produces an
// auto-generated title.
const defaultConversationTitle = "New Chat"

type createConversationRequest struct {
	Title string `json:"title"`
}

func (s *APIV1Service) CreateConversation(c echo.Context) error {
	ctx := c.Request().Context()

	request := &createConversationRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}

	create := &store.Conversation{
		UID:         shortuuid.New(),
		Title:       defaultConversationTitle,
		TitleSource: store.TitleSourceDefault,
	}
	if request.Title != "" {
		create.Title = request.Title
		create.TitleSource = store.TitleSourceUser
	}

	conversation, err := s.Store.CreateConversation(ctx, create)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create conversation").SetInternal(err)
	}
	return c.JSON(http.StatusOK, convertConversation(conversation))
}

func (s *APIV1Service) ListConversations(c echo.Context) error {
	ctx := c.Request().Context()

	find := &store.FindConversation{}
	rowStatus := store.Normal
	if c.QueryParam("state") == "archived" {
		rowStatus = store.Archived
	}
	find.RowStatus = &rowStatus

	list, err := s.Store.ListConversations(ctx, find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list conversations").SetInternal(err)
	}

	payload := make([]*conversationPayload, 0, len(list))
	for _, conversation := range list {
		payload = append(payload, convertConversation(conversation))
	}
	return c.JSON(http.StatusOK, payload)
}

func (s *APIV1Service) GetConversation(c echo.Context) error {
	ctx := c.Request().Context()

	uid := c.Param("uid")
	conversation, err := s.Store.GetConversation(ctx, &store.FindConversation{UID: &uid})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get conversation").SetInternal(err)
	}
	if conversation == nil {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}
	return c.JSON(http.StatusOK, convertConversation(conversation))
}

type updateConversationRequest struct {
	Title    *string `json:"title"`
	Archived *bool   `json:"archived"`
}

func (s *APIV1Service) UpdateConversation(c echo.Context) error {
	ctx := c.Request().Context()

	uid := c.Param("uid")
	conversation, err := s.Store.GetConversation(ctx, &store.FindConversation{UID: &uid})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get conversation").SetInternal(err)
	}
	if conversation == nil {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}

	request := &updateConversationRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}

	update := &store.UpdateConversation{ID: conversation.ID}
	if request.Title != nil {
		update.Title = request.Title
		titleSource := store.TitleSourceUser
		update.TitleSource = &titleSource
	}
	if request.Archived != nil {
		rowStatus := store.Normal
		if *request.Archived {
			rowStatus = store.Archived
		}
		update.RowStatus = &rowStatus
	}

	updated, err := s.Store.UpdateConversation(ctx, update)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update conversation").SetInternal(err)
	}
	return c.JSON(http.StatusOK, convertConversation(updated))
}

func (s *APIV1Service) DeleteConversation(c echo.Context) error {
	ctx := c.Request().Context()

	uid := c.Param("uid")
	conversation, err := s.Store.GetConversation(ctx, &store.FindConversation{UID: &uid})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get conversation").SetInternal(err)
	}
	if conversation == nil {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}

	if err := s.Store.DeleteConversation(ctx, &store.DeleteConversation{ID: conversation.ID}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete conversation").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) ListConversationMessages(c echo.Context) error {
	ctx := c.Request().Context()

	uid := c.Param("uid")
	conversation, err := s.Store.GetConversation(ctx, &store.FindConversation{UID: &uid})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get conversation").SetInternal(err)
	}
	if conversation == nil {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}

	messages, err := s.Store.ListMessages(ctx, &store.FindMessage{ConversationID: &conversation.ID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list messages").SetInternal(err)
	}

	payload := make([]*messagePayload, 0, len(messages))
	for _, message := range messages {
		payload = append(payload, convertMessage(message))
	}
	return c.JSON(http.StatusOK, payload)
}
