package httpx

import (
	"fmt"
	"io"
	"strings"

	"alertrelay/internal/logging"
)

// Response is one framed outbound response. Construction decides whether a
// body is present; the wire formats differ beyond the body itself.
type Response struct {
	StatusLine string
	Headers    []string
	body       *string
}

func NewResponse(statusLine string, headers []string, body string) Response {
	return Response{StatusLine: statusLine, Headers: headers, body: &body}
}

func NewBodylessResponse(statusLine string, headers []string) Response {
	return Response{StatusLine: statusLine, Headers: headers}
}

// Write serializes the response. Every response carries Connection: close;
// a response with a body additionally carries its byte length and the
// blank-line separator, a bodyless one ends after the last header.
func (r Response) Write(w io.Writer) error {
	headers := make([]string, 0, len(r.Headers)+2)
	headers = append(headers, r.Headers...)
	headers = append(headers, "Connection: close")

	var wire string
	if r.body != nil {
		headers = append(headers, fmt.Sprintf("Content-Length: %d", len(*r.body)))
		wire = r.StatusLine + "\r\n" + strings.Join(headers, "\r\n") + "\r\n\r\n" + *r.body
	} else {
		wire = r.StatusLine + "\r\n" + strings.Join(headers, "\r\n")
	}

	logging.Tracef("Sending response =\n%s\nEOF", wire)
	_, err := w.Write([]byte(wire))
	return err
}
