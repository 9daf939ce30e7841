package patient

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
	g.GET("/patients", h.ListPatients)
	g.POST("/patients", h.CreatePatient)
}

func (h *Handler) ListPatients(c echo.Context) error {
	patients, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	body, err := markup.EncodeCollection(patients, CollectionTag, ItemTag)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, markup.MIMEApplicationXML, body)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	req, err := markup.DecodeSingle[CreateRequest](raw, ItemTag)
	if err != nil {
		return err
	}
	p, err := h.svc.Create(c.Request().Context(), req.CPR, req.Name, req.DOB)
	if err != nil {
		return err
	}
	body, err := markup.EncodeCreated(ItemTag, p)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusCreated, markup.MIMEApplicationXML, body)
}
