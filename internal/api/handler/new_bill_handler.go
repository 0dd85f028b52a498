package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/billed/billed-app/internal/api/controller"
	"github.com/billed/billed-app/internal/api/views"
	"github.com/billed/billed-app/internal/core/domain"
	"github.com/billed/billed-app/internal/core/ports"
)

const newBillTitle = "Envoyer une note de frais"

// Messages shown in the error-message slot of the form.
const (
	msgUnsupportedFile = "Seuls les fichiers jpg, jpeg et png sont acceptés."
	msgMissingReceipt  = "Veuillez joindre un justificatif."
	msgDuplicate       = "Cette note de frais a déjà été envoyée."
	msgSubmitFailed    = "La note de frais n'a pas pu être envoyée, veuillez réessayer."
)

type NewBillHandler struct {
	store ports.BillStore
	log   zerolog.Logger
}

func NewNewBillHandler(store ports.BillStore, log zerolog.Logger) *NewBillHandler {
	return &NewBillHandler{store: store, log: log}
}

func (h *NewBillHandler) controller(c echo.Context) *controller.NewBill {
	return controller.NewNewBill(h.store, redirectNavigator{c: c}, echoSession{c: c}, h.log)
}

// Form renders an empty new bill form.
func (h *NewBillHandler) Form(c echo.Context) error {
	return h.render(c, http.StatusOK, views.NewBillData{})
}

// File validates and uploads the selected receipt.
//
// @Summary      Upload a receipt
// @Description  Validates the extension (jpg, jpeg, png) and opens a draft bill for it.
// @Tags         bills
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Receipt image"
// @Success      200   {object}  domain.ReceiptUpload
// @Failure      422   {object}  map[string]string
// @Router       /employee/bill/new/file [post]
func (h *NewBillHandler) File(c echo.Context) error {
	ctrl := h.controller(c)

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}

	upload, err := h.selectFile(c, ctrl, fh)
	if err != nil {
		if !controller.IsValidationError(err) {
			return err
		}
		if WantsJSON(c) {
			return c.JSON(http.StatusUnprocessableEntity, errorBody(formMessage(err)))
		}
		return h.render(c, http.StatusUnprocessableEntity, views.NewBillData{Error: formMessage(err)})
	}

	if WantsJSON(c) {
		return c.JSON(http.StatusOK, upload)
	}
	return h.render(c, http.StatusOK, views.NewBillData{Upload: upload})
}

// Submit sends the new bill form. A receipt may come with the form itself or
// from an earlier File call through the hidden fields.
func (h *NewBillHandler) Submit(c echo.Context) error {
	ctrl := h.controller(c)

	var req billFormRequest
	if err := c.Bind(&req); err != nil {
		return h.render(c, http.StatusBadRequest, views.NewBillData{Error: "Formulaire invalide."})
	}
	ctrl.Restore(req.upload())

	if fh, err := c.FormFile("file"); err == nil {
		if _, err := h.selectFile(c, ctrl, fh); err != nil {
			return h.formError(c, ctrl, req, err)
		}
	}

	if err := c.Validate(&req); err != nil {
		return h.render(c, http.StatusUnprocessableEntity, views.NewBillData{
			Form:   req.toView(),
			Upload: ctrl.Upload(),
			Error:  err.Error(),
		})
	}

	if _, err := ctrl.OnFormSubmit(c.Request().Context(), req.toForm()); err != nil {
		return h.formError(c, ctrl, req, err)
	}
	return nil
}

// Back returns to the bill list.
func (h *NewBillHandler) Back(c echo.Context) error {
	return h.controller(c).OnDashboardClicked(c.Request().Context())
}

func (h *NewBillHandler) selectFile(c echo.Context, ctrl *controller.NewBill, fh *multipart.FileHeader) (*domain.ReceiptUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	return ctrl.OnFileSelected(c.Request().Context(), domain.ReceiptFile{
		Name:    fh.Filename,
		Size:    fh.Size,
		Content: f,
	})
}

// formError re-renders the form after a failed submission so the user can
// fix it and send it again.
func (h *NewBillHandler) formError(c echo.Context, ctrl *controller.NewBill, req billFormRequest, err error) error {
	status := http.StatusUnprocessableEntity
	if !controller.IsValidationError(err) {
		status = http.StatusInternalServerError
		if errors.Is(err, domain.ErrBillNotFound) {
			status = http.StatusNotFound
		}
	}
	return h.render(c, status, views.NewBillData{
		Form:   req.toView(),
		Upload: ctrl.Upload(),
		Error:  formMessage(err),
	})
}

func (h *NewBillHandler) render(c echo.Context, status int, data views.NewBillData) error {
	data.Types = domain.BillTypes
	return c.Render(status, views.PageNewBill, page(c, newBillTitle, "new-bill", data))
}

func formMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFile):
		return msgUnsupportedFile
	case errors.Is(err, domain.ErrMissingReceipt):
		return msgMissingReceipt
	case errors.Is(err, domain.ErrDuplicateSubmission):
		return msgDuplicate
	default:
		return msgSubmitFailed
	}
}
