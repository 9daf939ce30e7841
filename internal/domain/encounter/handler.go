package encounter

import (
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
	g.GET("/patients/:pid/encounters", h.ListEncounters)
	g.POST("/patients/:pid/encounters", h.CreateEncounter)
}

func (h *Handler) ListEncounters(c echo.Context) error {
	encs, err := h.svc.ListForPatient(c.Request().Context(), c.Param("pid"))
	if err != nil {
		return err
	}
	body, err := markup.EncodeCollection(encs, CollectionTag, ItemTag)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, markup.MIMEApplicationXML, body)
}

// CreateEncounter ignores the request body; everything comes from the path.
func (h *Handler) CreateEncounter(c echo.Context) error {
	enc, err := h.svc.Create(c.Request().Context(), c.Param("pid"))
	if err != nil {
		return err
	}
	body, err := markup.EncodeCreated(ItemTag, enc)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusCreated, markup.MIMEApplicationXML, body)
}
