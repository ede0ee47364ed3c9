package http

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tliang07/askflow/internal/domain"
)

const copyBufSize = 1024 * 1024

// UploadErrorItem is one per-file failure in a batch upload.
type UploadErrorItem struct {
	OK       bool   `json:"ok"`
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// UploadMultipleResponse is the partial-success batch contract.
type UploadMultipleResponse struct {
	OK     bool                  `json:"ok"`
	Items  []domain.IngestResult `json:"items"`
	Errors []UploadErrorItem     `json:"errors"`
}

// UploadFile ingests a single PDF upload.
func (h *Handler) UploadFile(c echo.Context) error {
	userID := formUserID(c)

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing file"})
	}

	result, err := h.saveAndIngest(c, userID, fh)
	if err != nil {
		return uploadError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// UploadMultiple ingests a batch of PDFs. One file's failure does not
// abort its siblings.
func (h *Handler) UploadMultiple(c echo.Context) error {
	userID := formUserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
	}
	files := form.File["files"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no files provided"})
	}

	items := []domain.IngestResult{}
	errItems := []UploadErrorItem{}
	for _, fh := range files {
		result, err := h.saveAndIngest(c, userID, fh)
		if err != nil {
			errItems = append(errItems, UploadErrorItem{
				Filename: filename(fh),
				Error:    errorMessage(err),
			})
			continue
		}
		items = append(items, *result)
	}

	return c.JSON(http.StatusOK, UploadMultipleResponse{
		OK:     len(errItems) == 0,
		Items:  items,
		Errors: errItems,
	})
}

func (h *Handler) saveAndIngest(c echo.Context, userID string, fh *multipart.FileHeader) (*domain.IngestResult, error) {
	savedPath, err := h.savePDF(fh)
	if err != nil {
		return nil, err
	}
	return h.svc.IngestPDF(c.Request().Context(), userID, savedPath, fh.Filename)
}

// savePDF validates the upload and streams it to the files directory.
// Validation failures are *echo.HTTPError values carrying the client
// error classification (400 bad type/name, 413 oversized).
func (h *Handler) savePDF(fh *multipart.FileHeader) (string, error) {
	if fh.Filename == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "missing filename")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != ".pdf" {
		if ext == "" {
			ext = "no extension"
		}
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("only PDF is supported (got %s)", ext))
	}

	filesDir := filepath.Join(h.storageDir, "files")
	if err := os.MkdirAll(filesDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create files dir: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	savedPath := filepath.Join(filesDir, uuid.New().String()+".pdf")
	dst, err := os.Create(savedPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	var total int64
	buf := make([]byte, copyBufSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			total += int64(n)
			if total > h.maxUploadBytes {
				os.Remove(savedPath)
				return "", echo.NewHTTPError(http.StatusRequestEntityTooLarge,
					fmt.Sprintf("file too large, max allowed is %d bytes", h.maxUploadBytes))
			}
			if _, werr := dst.Write(buf[:n]); werr != nil {
				os.Remove(savedPath)
				return "", fmt.Errorf("failed saving file: %w", werr)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			os.Remove(savedPath)
			return "", fmt.Errorf("failed reading upload: %w", rerr)
		}
	}

	return savedPath, nil
}

func formUserID(c echo.Context) string {
	userID := c.FormValue("user_id")
	if userID == "" {
		userID = defaultUserID
	}
	return userID
}

func filename(fh *multipart.FileHeader) string {
	if fh.Filename == "" {
		return "unknown"
	}
	return fh.Filename
}

func errorMessage(err error) string {
	if he, ok := err.(*echo.HTTPError); ok {
		return fmt.Sprint(he.Message)
	}
	return err.Error()
}

func uploadError(c echo.Context, err error) error {
	if he, ok := err.(*echo.HTTPError); ok {
		return c.JSON(he.Code, map[string]string{"error": fmt.Sprint(he.Message)})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
