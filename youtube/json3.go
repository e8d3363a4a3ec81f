package youtube

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/nijaru/yt-transcript/transcript"
	"github.com/pkg/errors"
)

type json3Doc struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	TStartMs    int64      `json:"tStartMs"`
	DDurationMs int64      `json:"dDurationMs"`
	Segs        []json3Seg `json:"segs"`
}

type json3Seg struct {
	UTF8 string `json:"utf8"`
}

// parseJSON3 converts json3 caption events into segments. Events without
// text, such as window definitions and bare line breaks, are skipped.
func parseJSON3(r io.Reader) ([]transcript.Segment, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read captions")
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, errors.New("empty caption response")
	}

	var doc json3Doc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(err, "decode json3 captions")
	}

	segments := make([]transcript.Segment, 0, len(doc.Events))
	for _, ev := range doc.Events {
		if len(ev.Segs) == 0 {
			continue
		}

		var sb strings.Builder
		for _, s := range ev.Segs {
			sb.WriteString(s.UTF8)
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}

		segments = append(segments, transcript.Segment{
			Text:     text,
			Start:    float64(ev.TStartMs) / 1000,
			Duration: float64(ev.DDurationMs) / 1000,
		})
	}
	return segments, nil
}
