package provisioning

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/credentials"
	"github.com/muurk/wifiprov/internal/logging"
)

// Accept failures such as EMFILE are retried after a growing pause
const (
	acceptRetryInitial = 5 * time.Millisecond
	acceptRetryMax     = time.Second
)

// ErrServerClosed is returned by Credentials after the server has been closed
var ErrServerClosed = errors.New("provisioning server closed")

// Server is a single-connection credential portal. It is used for one
// provisioning cycle and is not reusable once closed.
type Server struct {
	config    *Config
	configErr error

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

// New creates a portal. A nil config uses DefaultConfig. An invalid
// config is reported by Listen.
func New(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	return &Server{config: config, configErr: config.Validate()}
}

// Listen binds the listening socket with address reuse enabled.
func (s *Server) Listen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.configErr != nil {
		return fmt.Errorf("invalid portal configuration: %w", s.configErr)
	}
	if s.closed {
		return ErrServerClosed
	}
	if s.listener != nil {
		return nil
	}

	lc := net.ListenConfig{Control: reuseAddr}
	listener, err := lc.Listen(ctx, "tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}
	s.listener = listener

	logging.Info("Provisioning portal listening",
		zap.String("addr", listener.Addr().String()),
	)

	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops listening. Safe to call more than once.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	s.listener = nil
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// Credentials accepts connections one at a time until a valid submission
// arrives, then closes the listener and returns it. Rejected requests are
// answered and logged; they never end the loop. Cancelling ctx closes the
// listener and returns ctx.Err().
func (s *Server) Credentials(ctx context.Context) (*credentials.Credentials, error) {
	if err := s.Listen(ctx); err != nil {
		return nil, err
	}
	defer s.Close()

	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		_ = s.Close()
	})
	defer stop()

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = acceptRetryInitial
	retry.MaxInterval = acceptRetryMax
	retry.MaxElapsedTime = 0

	for {
		logging.Debug("Waiting for portal connection")

		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return nil, ErrServerClosed
			}
			wait := retry.NextBackOff()
			logging.Error("Failed to accept connection", zap.Error(err), zap.Duration("retry_in", wait))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		retry.Reset()

		creds, err := s.HandleConnection(conn)
		if err != nil {
			logging.Warn("Rejected portal request",
				zap.String("remote_addr", conn.RemoteAddr().String()),
				zap.Error(err),
			)
			continue
		}
		if creds != nil {
			logging.Info("Received credentials", zap.Stringer("credentials", creds))
			return creds, nil
		}
	}
}

// HandleConnection serves one request/response cycle and closes conn.
// It returns credentials for an accepted submission, nil for a page view,
// or a *RequestError for a rejected request.
func (s *Server) HandleConnection(conn net.Conn) (*credentials.Credentials, error) {
	remoteAddr := conn.RemoteAddr().String()

	defer func() {
		_ = conn.Close()
		logging.LogConnection(remoteAddr, "connection_closed")
	}()

	logging.LogConnection(remoteAddr, "connection_accepted")

	if s.config.ReadTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(s.config.ReadTimeout))
	}

	req, err := ReadRequest(conn, s.config.Limits())
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			s.reject(conn, remoteAddr, reqErr.Message)
		}
		return nil, err
	}

	logging.LogHTTPRequest(remoteAddr, req.Method, req.Path, req.Header)
	logging.LogRawBytes("Portal request header", req.head)

	switch req.Method {
	case "GET":
		if err := WriteOK(conn, s.config.Page); err != nil {
			logging.Warn("Failed to send page", zap.String("remote_addr", remoteAddr), zap.Error(err))
			return nil, nil
		}
		logging.LogHTTPResponse(remoteAddr, 200, map[string]string{"Content-type": "text/html"})
		return nil, nil

	case "POST":
		creds, err := CredentialsFromForm(string(req.Body))
		if err != nil {
			var reqErr *RequestError
			if errors.As(err, &reqErr) {
				s.reject(conn, remoteAddr, reqErr.Message)
			}
			return nil, err
		}

		if err := WriteOK(conn, s.config.SuccessPage); err != nil {
			logging.Warn("Failed to acknowledge submission", zap.String("remote_addr", remoteAddr), zap.Error(err))
		} else {
			logging.LogHTTPResponse(remoteAddr, 200, map[string]string{"Content-type": "text/html"})
		}
		return creds, nil

	default:
		msg := fmt.Sprintf("Unsupported method: %s", req.Method)
		s.reject(conn, remoteAddr, msg)
		return nil, &RequestError{Kind: KindUnsupportedMethod, Message: msg}
	}
}

func (s *Server) reject(conn net.Conn, remoteAddr, message string) {
	if err := WriteBadRequest(conn, s.config.ErrorPage, message); err != nil {
		logging.Warn("Failed to send 400 response", zap.String("remote_addr", remoteAddr), zap.Error(err))
		return
	}
	logging.LogHTTPResponse(remoteAddr, 400, map[string]string{
		"Content-type": "text/html; charset=\"utf-8\"",
	})
}
