package validation

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/nijaru/yt-transcript/errors"
)

const (
	msgInvalidURL = "Please enter a valid video URL, for example https://www.youtube.com/watch?v=VIDEO_ID or https://youtu.be/VIDEO_ID."
	msgMissingID  = "The URL does not contain a video id."
)

// DefaultIDPattern accepts short alphanumeric tokens with '-' and '_'.
var DefaultIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Path prefixes that carry the id in the following segment.
var idPrefixes = map[string]bool{
	"shorts": true,
	"embed":  true,
	"live":   true,
	"v":      true,
}

// Single-segment paths that are pages, not short links.
var reservedSegments = map[string]bool{
	"watch":    true,
	"playlist": true,
	"channel":  true,
	"results":  true,
	"feed":     true,
	"user":     true,
	"c":        true,
}

type Validator struct {
	allowedHosts []string
	idPattern    *regexp.Regexp
}

type Option func(*Validator)

// WithAllowedHosts restricts extraction to the given hosts and their subdomains.
func WithAllowedHosts(hosts ...string) Option {
	return func(v *Validator) {
		for _, h := range hosts {
			if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
				v.allowedHosts = append(v.allowedHosts, h)
			}
		}
	}
}

func WithIDPattern(re *regexp.Regexp) Option {
	return func(v *Validator) {
		v.idPattern = re
	}
}

func NewValidator(opts ...Option) *Validator {
	v := &Validator{idPattern: DefaultIDPattern}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = NewValidator()

// ExtractVideoID extracts the video id using a validator that accepts any host.
func ExtractVideoID(rawURL string) (string, error) {
	return defaultValidator.ExtractVideoID(rawURL)
}

// ValidateURL checks that rawURL is an absolute http(s) URL with a host.
func (v *Validator) ValidateURL(rawURL string) (*url.URL, error) {
	const op = "Validator.ValidateURL"

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.InvalidURL(op, nil, "URL is required.")
	}

	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, errors.InvalidURL(op, err, msgInvalidURL)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, errors.InvalidURL(op, nil, msgInvalidURL)
	}

	if parsedURL.Hostname() == "" {
		return nil, errors.InvalidURL(op, nil, msgInvalidURL)
	}

	if !v.hostAllowed(parsedURL.Hostname()) {
		return nil, errors.InvalidURL(op, nil, "Links from this site are not supported.")
	}

	return parsedURL, nil
}

// ExtractVideoID returns the video id embedded in rawURL. Recognized shapes are
// watch pages (?v=ID), short links (/ID) and /shorts/ID, /embed/ID, /live/ID, /v/ID.
func (v *Validator) ExtractVideoID(rawURL string) (string, error) {
	const op = "Validator.ExtractVideoID"

	parsedURL, err := v.ValidateURL(rawURL)
	if err != nil {
		return "", err
	}

	id, ok := idFromURL(parsedURL)
	if !ok {
		return "", errors.InvalidURL(op, nil, msgMissingID)
	}

	if !v.idPattern.MatchString(id) {
		return "", errors.InvalidURL(op, nil, msgMissingID)
	}

	return id, nil
}

func idFromURL(u *url.URL) (string, bool) {
	if id := u.Query().Get("v"); id != "" {
		return id, true
	}

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	switch len(segments) {
	case 1:
		if reservedSegments[strings.ToLower(segments[0])] {
			return "", false
		}
		return segments[0], true
	case 2:
		if idPrefixes[strings.ToLower(segments[0])] {
			return segments[1], true
		}
	}
	return "", false
}

func (v *Validator) hostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, allowed := range v.allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
