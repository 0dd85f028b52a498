package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/billed/billed-app/internal/core/ports"
)

type ReceiptHandler struct {
	storage ports.ReceiptStorage
	log     zerolog.Logger
}

func NewReceiptHandler(storage ports.ReceiptStorage, log zerolog.Logger) *ReceiptHandler {
	return &ReceiptHandler{storage: storage, log: log}
}

// Download streams a stored receipt.
func (h *ReceiptHandler) Download(c echo.Context) error {
	rc, info, err := h.storage.Open(c.Request().Context(), c.Param("key"))
	if err != nil {
		return err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			h.log.Warn().Err(err).Str("key", info.Key).Msg("close receipt stream")
		}
	}()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", info.Name))
	if info.Size > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, fmt.Sprint(info.Size))
	}
	return c.Stream(http.StatusOK, info.ContentType, rc)
}
