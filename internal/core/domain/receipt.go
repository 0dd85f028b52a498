package domain

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFile = errors.New("unsupported receipt file")
var ErrReceiptNotFound = errors.New("receipt not found")
var ErrMissingReceipt = errors.New("receipt required")

// allowedReceiptExtensions is the receipt allow-list (image formats only).
var allowedReceiptExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// ReceiptFile is a receipt selected by the user, before upload.
type ReceiptFile struct {
	Name    string
	Size    int64
	Content io.Reader
}

// ReceiptUpload is what the store hands back once a receipt is stored. Key is
// the identifier of the draft bill the receipt is attached to.
type ReceiptUpload struct {
	Key      string `json:"key"`
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
}

// ReceiptInfo describes a stored receipt for download.
type ReceiptInfo struct {
	Key         string
	Name        string
	ContentType string
	Size        int64
}

// ReceiptExtension returns the lower-cased extension of name without the dot.
// Browsers may send a full Windows path, so backslashes are treated as
// separators too.
func ReceiptExtension(name string) string {
	name = BaseFileName(name)
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// BaseFileName strips any client-side directory from an uploaded file name.
func BaseFileName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// IsAllowedReceipt reports whether name carries an accepted image extension.
func IsAllowedReceipt(name string) bool {
	_, ok := allowedReceiptExtensions[ReceiptExtension(name)]
	return ok
}

// ReceiptContentType returns the MIME type served for an accepted receipt.
func ReceiptContentType(name string) string {
	if ct, ok := allowedReceiptExtensions[ReceiptExtension(name)]; ok {
		return ct
	}
	return "application/octet-stream"
}
