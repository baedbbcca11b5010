package httpx

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"unicode/utf8"

	"alertrelay/internal/logging"
)

const (
	readChunkSize   = 1024
	headerSeparator = "\r\n\r\n"
)

// Request is one framed inbound request.
type Request struct {
	Method string
	Path   string
	Body   string
}

// ReadRequest frames a request off a stream that may deliver data in
// arbitrary-sized chunks. A read-deadline timeout with no pending
// 100-continue is treated as logical end-of-input, not an error: clients
// that close without shutdown, or that never signal EOF, still parse.
func ReadRequest(stream io.ReadWriter) (*Request, error) {
	p := newParser()
	buf := make([]byte, readChunkSize)
	continueSent := false

	for !p.done() {
		n, err := stream.Read(buf)
		if n > 0 {
			logging.Tracef("Read %d bytes from incoming stream", n)
			if ferr := p.feed(buf[:n]); ferr != nil {
				return nil, ferr
			}
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			logging.Tracef("EOF found")
			break
		}
		if isTimeout(err) {
			if !continueSent && p.expectsContinue() {
				logging.Tracef("Returning 100-continue")
				if _, werr := stream.Write([]byte("HTTP/1.1 100 Continue\r\n")); werr != nil {
					return nil, &StreamError{Op: "write", Err: werr}
				}
				continueSent = true
				continue
			}
			logging.Tracef("Read timeout without 100-continue, assuming end of transmission")
			break
		}
		return nil, &StreamError{Op: "read", Err: err}
	}

	return p.finish()
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

type parserState int

const (
	awaitingHeaders parserState = iota
	awaitingBody
	complete
)

// parser accumulates bytes and tracks framing progress so consumed regions
// are never rescanned.
type parser struct {
	buf           []byte
	state         parserState
	scanned       int // high-water mark of the separator search
	bodyStart     int
	contentLength int // -1 until a Content-Length header is parsed
}

func newParser() *parser {
	return &parser{
		state:         awaitingHeaders,
		bodyStart:     -1,
		contentLength: -1,
	}
}

func (p *parser) done() bool {
	return p.state == complete
}

func (p *parser) feed(data []byte) error {
	p.buf = append(p.buf, data...)

	if p.state == awaitingHeaders {
		idx := bytes.Index(p.buf[p.scanned:], []byte(headerSeparator))
		if idx < 0 {
			// The separator may straddle the next chunk.
			if back := len(p.buf) - len(headerSeparator) + 1; back > p.scanned {
				p.scanned = back
			}
			return nil
		}
		p.bodyStart = p.scanned + idx + len(headerSeparator)
		logging.Tracef("Headers complete, body starts at %d", p.bodyStart)

		length, found, err := parseContentLength(p.buf[:p.bodyStart])
		if err != nil {
			return err
		}
		if !found {
			// No length to bound the body; read until end-of-input.
			return nil
		}
		p.contentLength = length
		p.state = awaitingBody
	}

	if p.state == awaitingBody && len(p.buf) >= p.bodyStart+p.contentLength {
		p.state = complete
	}
	return nil
}

func (p *parser) expectsContinue() bool {
	return bytes.Contains(p.buf, []byte("Expect: 100-continue"))
}

func (p *parser) finish() (*Request, error) {
	lineEnd := bytes.IndexByte(p.buf, '\n')
	if lineEnd < 0 {
		return nil, ErrRequestLineParse
	}
	line := bytes.TrimSuffix(p.buf[:lineEnd], []byte("\r"))
	if !utf8.Valid(line) {
		return nil, ErrBadMessage
	}
	fields := strings.Split(string(line), " ")
	if len(fields) < 2 || fields[0] == "" || fields[1] == "" {
		return nil, ErrRequestLineParse
	}
	method, path := fields[0], fields[1]
	logging.Tracef("Request line = %s %s", method, path)

	if p.bodyStart < 0 {
		return nil, ErrNoMessageBody
	}
	if p.contentLength < 0 {
		if method == "GET" {
			return &Request{Method: method, Path: path}, nil
		}
		return nil, ErrNoContentLength
	}

	bodyEnd := p.bodyStart + p.contentLength
	if bodyEnd > len(p.buf) {
		return nil, &BadContentLengthError{
			Expected: p.contentLength,
			Actual:   len(p.buf) - p.bodyStart,
		}
	}
	body := p.buf[p.bodyStart:bodyEnd]
	if !utf8.Valid(body) {
		return nil, ErrBadMessage
	}
	return &Request{Method: method, Path: path, Body: string(body)}, nil
}

// Header name matching is case-sensitive on purpose: the wire contract
// only recognizes the canonical "Content-Length: " spelling.
func parseContentLength(headers []byte) (length int, found bool, err error) {
	idx := bytes.Index(headers, []byte("Content-Length: "))
	if idx < 0 {
		return 0, false, nil
	}
	start := idx + len("Content-Length: ")
	end := bytes.IndexByte(headers[start:], '\r')
	if end < 0 {
		return 0, false, ErrNoContentLength
	}
	value := string(headers[start : start+end])
	logging.Tracef("Parsed Content-Length as '%s'", value)
	length, convErr := strconv.Atoi(value)
	if convErr != nil || length < 0 {
		return 0, false, ErrNoContentLength
	}
	return length, true, nil
}
