package youtube

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nijaru/yt-transcript/transcript"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://www.youtube.com"

	userAgent       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxWatchPage    = 6 << 20
	maxCaptionBytes = 4 << 20
)

var _ transcript.Provider = (*Client)(nil)

// Client fetches captions from the public watch page of a video.
type Client struct {
	httpClient *http.Client
	baseURL    string
	languages  []string
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithLanguages sets the preferred caption languages, most preferred first.
func WithLanguages(langs ...string) Option {
	return func(c *Client) {
		if len(langs) > 0 {
			c.languages = langs
		}
	}
}

// WithRateLimit paces outgoing requests. A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		languages:  []string{"en"},
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTranscript implements transcript.Provider.
func (c *Client) FetchTranscript(ctx context.Context, videoID string) ([]transcript.Segment, error) {
	log := c.logger.WithField("video_id", videoID)

	player, err := c.fetchPlayerResponse(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track, err := player.bestTrack(c.languages)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"language": track.LanguageCode,
		"kind":     track.Kind,
	}).Debug("Selected caption track")

	segments, err := c.fetchCaptions(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}
	log.WithField("segments", len(segments)).Debug("Fetched captions")
	return segments, nil
}

func (c *Client) fetchPlayerResponse(ctx context.Context, videoID string) (*playerResponse, error) {
	watchURL := c.baseURL + "/watch?v=" + url.QueryEscape(videoID)

	body, err := c.get(ctx, watchURL, maxWatchPage)
	if err != nil {
		return nil, errors.Wrap(err, "watch page")
	}
	defer body.Close()

	return parseWatchPage(body)
}

func (c *Client) fetchCaptions(ctx context.Context, trackURL string) ([]transcript.Segment, error) {
	captionURL, err := c.json3URL(trackURL)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, captionURL, maxCaptionBytes)
	if err != nil {
		return nil, errors.Wrap(err, "captions")
	}
	defer body.Close()

	return parseJSON3(body)
}

// json3URL resolves a caption track URL against the base URL and requests the json3 format.
func (c *Client) json3URL(trackURL string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", errors.Wrap(err, "parse base url")
	}
	ref, err := url.Parse(trackURL)
	if err != nil {
		return "", errors.Wrap(err, "parse caption track url")
	}

	u := base.ResolveReference(ref)
	q := u.Query()
	q.Set("fmt", "json3")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}

func (c *Client) get(ctx context.Context, rawURL string, limit int64) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, errors.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}

	return limitedBody{Reader: io.LimitReader(resp.Body, limit), Closer: resp.Body}, nil
}
