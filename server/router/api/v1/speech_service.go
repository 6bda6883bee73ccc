package v1

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

const maxAudioBytes = 25 << 20

type synthesizeSpeechRequest struct {
	Text string `json:"text"`
}

func (s *APIV1Service) SynthesizeSpeech(c echo.Context) error {
	if s.Gateway == nil {
		return aiUnavailable()
	}
	ctx := c.Request().Context()

	request := &synthesizeSpeechRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if request.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}

	audio, err := s.Gateway.SynthesizeSpeech(ctx, request.Text)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "speech synthesis failed").SetInternal(err)
	}
	return c.Blob(http.StatusOK, "audio/wav", audio)
}

type transcribeResponse struct {
	Text string `json:"text"`
}

func (s *APIV1Service) TranscribeSpeech(c echo.Context) error {
	if s.Gateway == nil {
		return aiUnavailable()
	}
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "audio file is required").SetInternal(err)
	}
	if fileHeader.Size > maxAudioBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "audio exceeds 25MB")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to open upload").SetInternal(err)
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read upload").SetInternal(err)
	}
	if len(audio) > maxAudioBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "audio exceeds 25MB")
	}

	text, err := s.Gateway.Transcribe(ctx, fileHeader.Filename, audio)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "transcription failed").SetInternal(err)
	}
	return c.JSON(http.StatusOK, &transcribeResponse{Text: text})
}
