package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/billed/billed-app/internal/api/views"
	"github.com/billed/billed-app/internal/core/domain"
	"github.com/billed/billed-app/internal/core/ports"
)

type DashboardHandler struct {
	svc ports.DashboardService
}

func NewDashboardHandler(svc ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Overview renders the admin dashboard for the status query parameter
// (pending by default).
func (h *DashboardHandler) Overview(c echo.Context) error {
	ov, err := h.svc.Overview(c.Request().Context(), domain.BillStatus(c.QueryParam("status")))
	if err != nil {
		return err
	}

	counts := make(map[string]int64, len(ov.Counts))
	for status, n := range ov.Counts {
		counts[string(status)] = n
	}
	data := views.DashboardData{Counts: counts, Selected: string(ov.Selected), Bills: ov.Bills}
	return c.Render(http.StatusOK, views.PageDashboard, page(c, "Tableau de bord", "dashboard", data))
}

// Decide accepts or refuses a pending bill.
//
// @Summary      Review a bill
// @Description  Accepts or refuses a pending bill. Only pending bills can be reviewed.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Bill ID"
// @Param        body  body      decisionRequest  true  "Decision"
// @Success      200   {object}  domain.Bill
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /admin/bills/{id}/decision [post]
func (h *DashboardHandler) Decide(c echo.Context) error {
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	bill, err := h.svc.Decide(c.Request().Context(), ports.DecisionInput{
		BillID:  c.Param("id"),
		Status:  domain.BillStatus(req.Status),
		Comment: req.Comment,
	})
	if err != nil {
		return err
	}

	if WantsJSON(c) {
		return c.JSON(http.StatusOK, bill)
	}
	return c.Redirect(http.StatusSeeOther, "/admin/dashboard?status="+url.QueryEscape(string(domain.StatusPending)))
}
