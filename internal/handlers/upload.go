package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"varirunBack/internal/models"
)

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".heic": true}

// parseForm parses a multipart body no larger than limit. Plain forms and
// JSON-less requests are accepted too.
func parseForm(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(limit)
	} else {
		err = r.ParseForm()
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return models.InvalidInput("request too large", map[string]string{"file": "file exceeds the upload limit"})
	}
	if err != nil {
		return models.InvalidInput("invalid form data", nil)
	}
	return nil
}

// formImage reads an optional image file. A nil upload means the field was absent.
func formImage(r *http.Request, field string) (*models.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	return readImage(field, headers[0])
}

func readImage(field string, fh *multipart.FileHeader) (*models.Upload, error) {
	invalid := func(msg string) error {
		return models.InvalidInput("invalid "+field, map[string]string{field: msg})
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExt[ext] {
		return nil, invalid("must be a jpg, png, webp or heic image")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, invalid("cannot read file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, invalid("cannot read file")
	}
	if len(data) == 0 {
		return nil, invalid("file is empty")
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") && ext != ".heic" {
		return nil, invalid("must be an image")
	}
	return &models.Upload{Filename: filepath.Base(fh.Filename), ContentType: contentType, Data: data}, nil
}
