package handler

import (
	"github.com/billed/billed-app/internal/api/controller"
	"github.com/billed/billed-app/internal/api/views"
	"github.com/billed/billed-app/internal/core/domain"
)

// billFormRequest is the new bill form. bill_key, file_url and file_name
// carry a receipt accepted by an earlier request.
type billFormRequest struct {
	Type       string `form:"type" validate:"required,billtype"`
	Name       string `form:"name" validate:"max=200"`
	Date       string `form:"date" validate:"required,datetime=2006-01-02"`
	Amount     int    `form:"amount" validate:"gt=0"`
	VAT        int    `form:"vat" validate:"gte=0"`
	Pct        int    `form:"pct" validate:"gte=0,lte=100"`
	Commentary string `form:"commentary" validate:"max=1000"`

	BillKey  string `form:"bill_key"`
	FileURL  string `form:"file_url"`
	FileName string `form:"file_name"`
}

func (r billFormRequest) toForm() controller.BillForm {
	return controller.BillForm{
		Type:       r.Type,
		Name:       r.Name,
		Date:       r.Date,
		Amount:     r.Amount,
		VAT:        r.VAT,
		Pct:        r.Pct,
		Commentary: r.Commentary,
	}
}

func (r billFormRequest) toView() views.NewBillForm {
	return views.NewBillForm{
		Type:       r.Type,
		Name:       r.Name,
		Date:       r.Date,
		Amount:     r.Amount,
		VAT:        r.VAT,
		Pct:        r.Pct,
		Commentary: r.Commentary,
	}
}

func (r billFormRequest) upload() domain.ReceiptUpload {
	return domain.ReceiptUpload{Key: r.BillKey, FileURL: r.FileURL, FileName: r.FileName}
}

// billResponse is the JSON shape of a bill.
type billResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Type          string `json:"type"`
	Name          string `json:"name"`
	Date          string `json:"date"`
	FormattedDate string `json:"formattedDate"`
	Amount        int    `json:"amount"`
	VAT           int    `json:"vat"`
	Pct           int    `json:"pct"`
	Commentary    string `json:"commentary,omitempty"`
	FileURL       string `json:"fileUrl,omitempty"`
	FileName      string `json:"fileName,omitempty"`
	Status        string `json:"status"`
	CommentAdmin  string `json:"commentAdmin,omitempty"`
}

type billListResponse struct {
	Bills []billResponse `json:"bills"`
}

func toBillResponse(v controller.BillView) billResponse {
	return billResponse{
		ID:            v.ID,
		Email:         v.Email,
		Type:          v.Type,
		Name:          v.Name,
		Date:          v.Date,
		FormattedDate: v.FormattedDate,
		Amount:        v.Amount,
		VAT:           v.VAT,
		Pct:           v.Pct,
		Commentary:    v.Commentary,
		FileURL:       v.FileURL,
		FileName:      v.FileName,
		Status:        string(v.Status),
		CommentAdmin:  v.CommentAdmin,
	}
}

type decisionRequest struct {
	Status  string `form:"status" json:"status" validate:"required,oneof=accepted refused"`
	Comment string `form:"comment" json:"comment" validate:"max=1000"`
}

type loginRequest struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
	Type     string `form:"type" json:"type" validate:"required,oneof=Employee Admin"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}
