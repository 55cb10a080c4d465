package backend

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/iamasit07/soundboard-dashboard/internal/domain"
)

// Upload streams one audio file to the backend as multipart/form-data.
func (c *Client) Upload(ctx context.Context, accessToken, filename string, content io.Reader) (*domain.File, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreateFormFile("file", filename)
		if err == nil {
			_, err = io.Copy(part, content)
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/files/upload"), pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("authorization", accessToken)

	var file domain.File
	if err := c.send(req, &file); err != nil {
		pr.CloseWithError(err)
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}
	return &file, nil
}
