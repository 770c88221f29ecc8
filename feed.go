package gridterm

import (
	"context"
	"errors"
	"io"

	"golang.org/x/time/rate"
)

// FeedOption configures a FeedLoop.
type FeedOption func(*feedConfig)

type feedConfig struct {
	limiter *rate.Limiter
	bufSize int
}

// WithFeedRateLimit throttles the feed loop to the given number of bytes per
// second, with burst as the largest read processed at once. A burst smaller
// than the read buffer caps the buffer size.
func WithFeedRateLimit(bytesPerSecond float64, burst int) FeedOption {
	return func(cfg *feedConfig) {
		cfg.limiter = rate.NewLimiter(rate.Limit(bytesPerSecond), burst)
	}
}

// WithFeedBufferSize sets the read buffer size. Default 32KiB.
func WithFeedBufferSize(n int) FeedOption {
	return func(cfg *feedConfig) {
		if n > 0 {
			cfg.bufSize = n
		}
	}
}

// FeedLoop reads from r and writes everything into the terminal until r is
// exhausted or ctx is canceled. It is the pull-based counterpart to using the
// terminal as an io.Writer, typically fed from a PTY master.
//
// Read errors other than io.EOF are reported to the error provider and
// returned. On context cancellation the context error is returned.
func (t *Terminal) FeedLoop(ctx context.Context, r io.Reader, opts ...FeedOption) error {
	cfg := feedConfig{bufSize: 32 * 1024}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.limiter != nil && cfg.limiter.Burst() < cfg.bufSize {
		cfg.bufSize = cfg.limiter.Burst()
	}
	if cfg.bufSize <= 0 {
		cfg.bufSize = 1
	}

	buf := make([]byte, cfg.bufSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.Read(buf)
		if n > 0 {
			if cfg.limiter != nil {
				if werr := cfg.limiter.WaitN(ctx, n); werr != nil {
					return werr
				}
			}
			if _, werr := t.Write(buf[:n]); werr != nil {
				t.reportFeedError(werr)
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			t.reportFeedError(err)
			return err
		}
	}
}

func (t *Terminal) reportFeedError(err error) {
	if ep := t.ErrorProvider(); ep != nil {
		ep.HandleError(err)
	}
}
