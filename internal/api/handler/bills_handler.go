package handler

import (
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/billed/billed-app/internal/api/controller"
	"github.com/billed/billed-app/internal/api/views"
	"github.com/billed/billed-app/internal/core/ports"
)

// BillsTitle is the heading of the employee bill list.
const BillsTitle = "Mes notes de frais"

type BillsHandler struct {
	store ports.BillStore
	log   zerolog.Logger
}

func NewBillsHandler(store ports.BillStore, log zerolog.Logger) *BillsHandler {
	return &BillsHandler{store: store, log: log}
}

func (h *BillsHandler) controller(c echo.Context, widget controller.PreviewWidget) *controller.BillsList {
	return controller.NewBillsList(h.store, redirectNavigator{c: c}, echoSession{c: c}, widget, h.log)
}

// List renders the bill list of the current employee.
func (h *BillsHandler) List(c echo.Context) error {
	bills, err := h.controller(c, &fragmentWidget{}).FetchBills(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.PageBills, page(c, BillsTitle, "bills", bills))
}

// NewBillClicked handles the "Nouvelle note de frais" button.
func (h *BillsHandler) NewBillClicked(c echo.Context) error {
	return h.controller(c, &fragmentWidget{}).OnCreateClicked(c.Request().Context())
}

// Preview renders the receipt preview of the url query parameter.
func (h *BillsHandler) Preview(c echo.Context) error {
	widget := &fragmentWidget{}
	h.controller(c, widget).OnReceiptPreviewClicked(controller.Attrs{
		controller.BillURLAttr: c.QueryParam("url"),
	})
	if !widget.shown {
		return c.NoContent(http.StatusNoContent)
	}
	return c.Render(http.StatusOK, views.PagePreview, views.Page{Data: template.HTML(widget.body)})
}

// APIList returns the bills of the current user.
//
// @Summary      List bills
// @Description  Bills of the authenticated user, latest first.
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  billListResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/bills [get]
func (h *BillsHandler) APIList(c echo.Context) error {
	bills, err := h.controller(c, &fragmentWidget{}).FetchBills(c.Request().Context())
	if err != nil {
		return err
	}

	resp := billListResponse{Bills: make([]billResponse, 0, len(bills))}
	for _, b := range bills {
		resp.Bills = append(resp.Bills, toBillResponse(b))
	}
	return c.JSON(http.StatusOK, resp)
}
