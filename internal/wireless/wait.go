package wireless

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrActivationTimeout is returned when a persona does not reach the
// requested active state in time.
var ErrActivationTimeout = errors.New("persona did not reach requested state")

var errNotYet = errors.New("persona state change pending")

// Defaults for WaitOptions
const (
	DefaultPollInterval      = 100 * time.Millisecond
	DefaultActivationTimeout = 10 * time.Second
)

// WaitOptions bound the wait in SetActive
type WaitOptions struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

func (o WaitOptions) withDefaults() WaitOptions {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultActivationTimeout
	}
	return o
}

// SetActive enables or disables p and blocks until the driver reports the
// new state. A persona already in the requested state is left untouched.
func SetActive(ctx context.Context, p Persona, active bool, opts WaitOptions) error {
	current, err := p.Active()
	if err != nil {
		return fmt.Errorf("failed to read persona state: %w", err)
	}
	if current == active {
		return nil
	}

	if err := p.SetActive(active); err != nil {
		return fmt.Errorf("failed to request active=%t: %w", active, err)
	}

	opts = opts.withDefaults()
	retries := uint64(opts.Timeout / opts.PollInterval)

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.PollInterval), retries),
		ctx,
	)

	err = backoff.Retry(func() error {
		got, err := p.Active()
		if err != nil {
			return backoff.Permanent(err)
		}
		if got != active {
			return errNotYet
		}
		return nil
	}, policy)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errNotYet):
		return fmt.Errorf("%w: active=%t after %v", ErrActivationTimeout, active, opts.Timeout)
	default:
		return err
	}
}
