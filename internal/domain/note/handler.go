package note

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/journal/internal/platform/markup"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/encounters/:eid/notes", h.ListNotes)
	g.POST("/encounters/:eid/notes", h.CreateNote)
}

func (h *Handler) ListNotes(c echo.Context) error {
	notes, err := h.svc.ListForEncounter(c.Request().Context(), c.Param("eid"))
	if err != nil {
		return err
	}
	body, err := markup.EncodeCollection(notes, CollectionTag, ItemTag)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, markup.MIMEApplicationXML, body)
}

func (h *Handler) CreateNote(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	req, err := markup.DecodeSingle[CreateRequest](raw, ItemTag)
	if err != nil {
		return err
	}
	n, err := h.svc.Create(c.Request().Context(), c.Param("eid"), req.Author, req.Text)
	if err != nil {
		return err
	}
	body, err := markup.EncodeCreated(ItemTag, n)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusCreated, markup.MIMEApplicationXML, body)
}
