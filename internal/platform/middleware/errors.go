package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/journal/internal/platform/apperr"
	"github.com/ehr/journal/internal/platform/markup"
)

// XMLErrorHandler renders every error as <error>message</error> with the
// status from apperr (or the code of an *echo.HTTPError). Causes of server
// faults are logged, never sent to the client.
func XMLErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := errorStatus(err)
		if code >= http.StatusInternalServerError {
			rid, _ := c.Get(RequestIDKey).(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", code).
				Msg("request failed")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.Blob(code, markup.MIMEApplicationXML, markup.EncodeError(msg))
		}
		if werr != nil {
			logger.Error().Err(werr).Msg("failed to write error response")
		}
	}
}

func errorStatus(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		return he.Code, msg
	}
	return apperr.HTTPStatus(err), apperr.Message(err)
}
