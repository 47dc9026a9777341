package provisioning

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkReader returns one chunk per Read call, then io.EOF.
type chunkReader struct {
	chunks []string
	reads  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	r.reads++
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func TestReadRequestGet(t *testing.T) {
	r := &chunkReader{chunks: []string{
		"GET /anything?x=1 HTTP/1.1\r\nHost: 192.168.1.1\r\nUser-Agent: test\r\n\r\n",
	}}

	req, err := ReadRequest(r, Limits{})
	if err != nil {
		t.Fatalf("ReadRequest() error = %v", err)
	}

	if req.Method != "GET" || req.Path != "/anything?x=1" || req.Protocol != "HTTP/1.1" {
		t.Errorf("request line = %q %q %q", req.Method, req.Path, req.Protocol)
	}
	if v, _ := req.Header.Get("user-agent"); v != "test" {
		t.Errorf("Header.Get(user-agent) = %q", v)
	}
	if len(req.Body) != 0 {
		t.Errorf("Body = %q, want empty", req.Body)
	}
}

func TestReadRequestBodyAcrossReads(t *testing.T) {
	body := "ssid=MyNetwork12&password=secret123456"
	body += strings.Repeat("x", 40-len(body))
	if len(body) != 40 {
		t.Fatalf("test body is %d bytes", len(body))
	}

	r := &chunkReader{chunks: []string{
		"POST / HTTP/1.1\r\nContent-Length: 40\r\n\r\n" + body[:20],
		body[20:],
	}}

	req, err := ReadRequest(r, Limits{})
	if err != nil {
		t.Fatalf("ReadRequest() error = %v", err)
	}
	if string(req.Body) != body {
		t.Errorf("Body = %q, want %q", req.Body, body)
	}
	if r.reads != 2 {
		t.Errorf("reads = %d, want 2", r.reads)
	}
}

func TestReadRequestBodyInSeparateSegment(t *testing.T) {
	r := &chunkReader{chunks: []string{
		"POST / HTTP/1.1\r\nContent-Length: 29\r\n\r\n",
		"ssid=MyNet&password=secret123",
	}}

	req, err := ReadRequest(r, Limits{})
	if err != nil {
		t.Fatalf("ReadRequest() error = %v", err)
	}
	if string(req.Body) != "ssid=MyNet&password=secret123" {
		t.Errorf("Body = %q", req.Body)
	}
}

func TestReadRequestSmallChunks(t *testing.T) {
	raw := "POST / HTTP/1.0\r\nContent-Length: 11\r\n\r\nssid=a&pw=b"
	r := &chunkReader{chunks: []string{raw}}

	req, err := ReadRequest(r, Limits{ChunkSize: 7})
	if err != nil {
		t.Fatalf("ReadRequest() error = %v", err)
	}
	if string(req.Body) != "ssid=a&pw=b" {
		t.Errorf("Body = %q", req.Body)
	}
}

func TestReadRequestTruncatesToContentLength(t *testing.T) {
	r := &chunkReader{chunks: []string{"POST / HTTP/1.0\r\nContent-Length: 4\r\n\r\nabcdEXTRA"}}

	req, err := ReadRequest(r, Limits{})
	if err != nil {
		t.Fatalf("ReadRequest() error = %v", err)
	}
	if string(req.Body) != "abcd" {
		t.Errorf("Body = %q, want abcd", req.Body)
	}
}

func TestReadRequestWithoutContentLength(t *testing.T) {
	tests := []struct {
		name      string
		chunks    []string
		wantBody  string
		wantReads int
	}{
		{
			name:      "body with headers",
			chunks:    []string{"POST / HTTP/1.0\r\nHost: x\r\n\r\nssid=MyNet&password=secret123"},
			wantBody:  "ssid=MyNet&password=secret123",
			wantReads: 1,
		},
		{
			name:      "later segment not awaited",
			chunks:    []string{"POST / HTTP/1.0\r\n\r\n", "ssid=MyNet&password=secret123"},
			wantBody:  "",
			wantReads: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &chunkReader{chunks: tt.chunks}
			req, err := ReadRequest(r, Limits{})
			if err != nil {
				t.Fatalf("ReadRequest() error = %v", err)
			}
			if string(req.Body) != tt.wantBody {
				t.Errorf("Body = %q, want %q", req.Body, tt.wantBody)
			}
			if r.reads != tt.wantReads {
				t.Errorf("reads = %d, want %d", r.reads, tt.wantReads)
			}
		})
	}
}

func TestReadRequestHeaderSplitting(t *testing.T) {
	r := &chunkReader{chunks: []string{
		"GET / HTTP/1.1\r\nHost: 10.0.0.1:8080\r\nX-Empty:\r\nno colon here\r\nX-Dup: a\r\nX-Dup: b\r\n\r\n",
	}}

	req, err := ReadRequest(r, Limits{})
	if err != nil {
		t.Fatalf("ReadRequest() error = %v", err)
	}

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"Host", "10.0.0.1", true},
		{"X-Empty", "", true},
		{"X-Dup", "b", true},
		{"no colon here", "", false},
	}
	for _, tt := range tests {
		got, ok := req.Header.Get(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Header.Get(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestReadRequestMalformed(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		limits Limits
	}{
		{name: "empty connection", chunks: nil},
		{name: "no blank line", chunks: []string{"GET / HTTP/1.1\r\nHost: x\r\n"}},
		{name: "short request line", chunks: []string{"GET /\r\n\r\n"}},
		{name: "long request line", chunks: []string{"GET / HTTP/1.1 extra\r\n\r\n"}},
		{name: "bad content length", chunks: []string{"POST / HTTP/1.1\r\nContent-Length: ten\r\n\r\n"}},
		{name: "negative content length", chunks: []string{"POST / HTTP/1.1\r\nContent-Length: -1\r\n\r\n"}},
		{name: "body cut short", chunks: []string{"POST / HTTP/1.1\r\nContent-Length: 40\r\n\r\nssid=a", "&password=b"}},
		{
			name:   "header too large",
			chunks: []string{"GET / HTTP/1.1\r\nX-Pad: " + strings.Repeat("a", 100)},
			limits: Limits{MaxHeaderBytes: 64},
		},
		{
			name:   "body too large",
			chunks: []string{"POST / HTTP/1.1\r\nContent-Length: 1000\r\n\r\n"},
			limits: Limits{MaxBodyBytes: 100},
		},
		{
			name:   "undeclared body too large",
			chunks: []string{"POST / HTTP/1.1\r\n\r\n" + strings.Repeat("a", 200)},
			limits: Limits{MaxBodyBytes: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRequest(&chunkReader{chunks: tt.chunks}, tt.limits)
			kind, ok := RequestErrorKindOf(err)
			if !ok || kind != KindFraming {
				t.Errorf("ReadRequest() error = %v, want framing RequestError", err)
			}
		})
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestReadRequestReadError(t *testing.T) {
	readErr := errors.New("connection reset")
	_, err := ReadRequest(failingReader{err: readErr}, Limits{})
	if !errors.Is(err, readErr) {
		t.Errorf("ReadRequest() error = %v, should wrap %v", err, readErr)
	}
}
