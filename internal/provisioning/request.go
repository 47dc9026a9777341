package provisioning

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var headerTerminator = []byte("\r\n\r\n")

// Header holds request headers. Names are unique; a repeated header keeps
// its last value.
type Header map[string]string

// Get looks up a header by name, ignoring case
func (h Header) Get(name string) (string, bool) {
	if v, ok := h[name]; ok {
		return v, true
	}
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// Request is one parsed request. It lives only as long as its connection.
type Request struct {
	Method   string
	Path     string
	Protocol string
	Header   Header
	Body     []byte

	head []byte // raw request line and headers
}

// ContentLength returns the declared body length, zero when absent.
func (r *Request) ContentLength() (int, error) {
	return contentLength(r.Header)
}

func contentLength(h Header) (int, error) {
	v, ok := h.Get("Content-Length")
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid Content-Length %q: %w", v, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid Content-Length %d", n)
	}
	return n, nil
}

// Limits bound how much ReadRequest will read
type Limits struct {
	ChunkSize      int
	MaxHeaderBytes int
	MaxBodyBytes   int
}

// Limits returns the read limits of the configuration
func (c *Config) Limits() Limits {
	return Limits{
		ChunkSize:      c.ChunkSize,
		MaxHeaderBytes: c.MaxHeaderBytes,
		MaxBodyBytes:   c.MaxBodyBytes,
	}
}

// ReadRequest reads one request from r.
//
// Data is read in chunks of at most ChunkSize bytes until the blank line
// ending the header block is seen. Body bytes that arrived with the headers
// are kept, and further chunks are read until the body reaches the declared
// Content-Length. Bytes beyond the declared length are dropped. Without a
// Content-Length header the body is whatever arrived with the headers.
func ReadRequest(r io.Reader, limits Limits) (*Request, error) {
	if limits.ChunkSize <= 0 {
		limits.ChunkSize = DefaultChunkSize
	}
	if limits.MaxHeaderBytes <= 0 {
		limits.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if limits.MaxBodyBytes <= 0 {
		limits.MaxBodyBytes = DefaultMaxBodyBytes
	}

	chunk := make([]byte, limits.ChunkSize)

	var data []byte
	var head, body []byte
	for {
		n, err := r.Read(chunk)
		data = append(data, chunk[:n]...)

		if idx := bytes.Index(data, headerTerminator); idx >= 0 {
			head = data[:idx]
			body = data[idx+len(headerTerminator):]
			break
		}
		if len(data) > limits.MaxHeaderBytes {
			return nil, newFramingError("Request header too large", nil)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(data) == 0 {
					return nil, newFramingError("Empty request", err)
				}
				return nil, newFramingError("Incomplete request header", err)
			}
			return nil, newFramingError("Failed to read request", err)
		}
	}

	req, err := parseHead(string(head))
	if err != nil {
		return nil, err
	}

	req.head = head

	if _, declared := req.Header.Get("Content-Length"); !declared {
		if len(body) > limits.MaxBodyBytes {
			return nil, newFramingError("Request body too large", nil)
		}
		req.Body = body
		return req, nil
	}

	length, err := contentLength(req.Header)
	if err != nil {
		return nil, newFramingError("Invalid Content-Length", err)
	}
	if length > limits.MaxBodyBytes {
		return nil, newFramingError("Request body too large", nil)
	}

	for len(body) < length {
		n, err := r.Read(chunk)
		body = append(body, chunk[:n]...)
		if len(body) >= length {
			break
		}
		if err != nil {
			return nil, newFramingError(
				fmt.Sprintf("Connection ended after %d of %d body bytes", len(body), length), err)
		}
	}

	req.Body = body[:length]
	return req, nil
}

// parseHead parses the request line and header lines.
func parseHead(head string) (*Request, error) {
	lines := strings.Split(head, "\r\n")

	preamble := strings.Fields(lines[0])
	if len(preamble) != 3 {
		return nil, newFramingError("Malformed request line", fmt.Errorf("request line %q", lines[0]))
	}

	req := &Request{
		Method:   preamble[0],
		Path:     preamble[1],
		Protocol: preamble[2],
		Header:   Header{},
	}

	for _, line := range lines[1:] {
		parts := strings.Split(line, ":")
		if len(parts) < 2 {
			continue
		}
		req.Header[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}

	return req, nil
}
