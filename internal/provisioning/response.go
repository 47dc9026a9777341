package provisioning

import (
	"fmt"
	"io"
)

const (
	statusOK         = "HTTP/1.0 200 OK\r\nContent-type: text/html\r\n\r\n"
	statusBadRequest = "HTTP/1.0 400 Bad Request\r\nContent-type: text/html; charset=\"utf-8\""
)

// WriteOK writes a 200 response carrying page. No length header is sent;
// the connection is closed after the body.
func WriteOK(w io.Writer, page string) error {
	if _, err := io.WriteString(w, statusOK+page); err != nil {
		return fmt.Errorf("failed to write 200 response: %w", err)
	}
	return nil
}

// WriteBadRequest writes a 400 response. With a message, the error page is
// rendered around it and sent with a Content-Length; without one the body
// is empty and no length is sent.
func WriteBadRequest(w io.Writer, errorPage, message string) error {
	response := statusBadRequest
	if message != "" {
		page := RenderErrorPage(errorPage, message)
		response += fmt.Sprintf("\r\nContent-Length:%d\r\n\r\n%s", len(page), page)
	} else {
		response += "\r\n\r\n"
	}

	if _, err := io.WriteString(w, response); err != nil {
		return fmt.Errorf("failed to write 400 response: %w", err)
	}
	return nil
}
