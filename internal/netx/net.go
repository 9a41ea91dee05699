// Package netx contains small HTTP helpers for object storage uploads.
package netx

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// PutToPresignedURL uploads body to a presigned object-storage URL with a
// plain HTTP PUT. Any non-200 response is an error, with the response body
// included for diagnostics.
func PutToPresignedURL(url, contentType string, body []byte) error {
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
