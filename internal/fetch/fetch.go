package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds the whole exchange, connect included.
const DefaultTimeout = 5 * time.Second

const UserAgent = "Lux-Parking Poller"

// Fetcher issues a single bounded GET against the feed endpoint. It never
// retries on its own; the poll schedule is the retry.
type Fetcher struct {
	url    string
	client *http.Client
}

func New(url string) *Fetcher {
	return &Fetcher{
		url: url,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Fetch returns the raw response body. Only an exact 200 is accepted, any
// other code (non-200 success codes included) yields a *StatusError.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &NetworkError{Cause: err}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{Cause: err}
	}

	return &NetworkError{Cause: err}
}

// TimeoutError reports that the exchange did not complete within the
// client deadline.
type TimeoutError struct {
	Cause error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("feed request timed out after %s: %v", DefaultTimeout, e.Cause)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

func (e *TimeoutError) Is(target error) bool {
	var t *TimeoutError
	return errors.As(target, &t)
}

// StatusError reports a response with any HTTP status other than 200.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status code %d", e.Code)
}

func (e *StatusError) Is(target error) bool {
	var t *StatusError
	return errors.As(target, &t)
}

// NetworkError reports a failure below HTTP: DNS, refused connection,
// reset, malformed request.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("feed request failed: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

func (e *NetworkError) Is(target error) bool {
	var t *NetworkError
	return errors.As(target, &t)
}
