// Package httpx builds the retrying HTTP clients the provider packages share.
package httpx

import (
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// MaxBody bounds every provider response read into memory.
const MaxBody = 4 << 20

// ErrTooLarge is returned by ReadAll when the body exceeds its limit.
var ErrTooLarge = eris.New("httpx: payload too large")

type Options struct {
	Timeout  time.Duration
	RetryMax int
	// CheckRedirect, when set, replaces the client's redirect policy.
	CheckRedirect func(req *http.Request, via []*http.Request) error
}

// NewClient returns a retryablehttp client with short backoffs that logs
// through zap at debug level.
func NewClient(o Options) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = o.RetryMax
	if o.Timeout > 0 {
		rc.HTTPClient.Timeout = o.Timeout
	}
	if o.CheckRedirect != nil {
		rc.HTTPClient.CheckRedirect = o.CheckRedirect
	}
	rc.Logger = zapLogger{}
	return rc
}

// ReadAll reads at most limit bytes and fails if r holds more.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, eris.Wrap(err, "httpx: read body")
	}
	if int64(len(b)) > limit {
		return nil, ErrTooLarge
	}
	return b, nil
}

// zapLogger adapts zap to retryablehttp.LeveledLogger. Retry chatter stays at
// debug; only retryablehttp's own errors surface at warn. The global logger is
// resolved per call so clients built before InitLogger still log.
type zapLogger struct{}

func (zapLogger) sugar() *zap.SugaredLogger { return zap.L().Named("http").Sugar() }

func (z zapLogger) Error(msg string, kv ...interface{}) { z.sugar().Warnw(msg, kv...) }
func (z zapLogger) Warn(msg string, kv ...interface{})  { z.sugar().Debugw(msg, kv...) }
func (z zapLogger) Info(msg string, kv ...interface{})  { z.sugar().Debugw(msg, kv...) }
func (z zapLogger) Debug(msg string, kv ...interface{}) { z.sugar().Debugw(msg, kv...) }
