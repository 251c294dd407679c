// Package httputil holds small HTTP helpers shared by the concrete sources.
package httputil

import (
	"fmt"
	"io"
	"net/http"
)

// CheckResponse takes an http.Response and a variadic of ints representing
// acceptable http status codes. The error returned will attempt to include
// some content from the server's response.
func CheckResponse(resp *http.Response, acceptableCodes ...int) error {
	for _, code := range acceptableCodes {
		if resp.StatusCode == code {
			return nil
		}
	}
	excerpt, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil || len(excerpt) == 0 {
		return fmt.Errorf("unexpected status code: %s", resp.Status)
	}
	return fmt.Errorf("unexpected status code: %s (body starts: %q)", resp.Status, excerpt)
}
