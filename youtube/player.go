package youtube

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	apperrors "github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/transcript"
	"github.com/pkg/errors"
)

const playerResponseMarker = "ytInitialPlayerResponse"

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

// parseWatchPage finds the inline player response among the page's scripts.
func parseWatchPage(r io.Reader) (*playerResponse, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "parse watch page")
	}

	var raw []byte
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		for {
			idx := strings.Index(text, playerResponseMarker)
			if idx < 0 {
				return true
			}
			text = text[idx+len(playerResponseMarker):]
			// Skip references like window["ytInitialPlayerResponse"] = null.
			rest := strings.TrimLeft(strings.TrimPrefix(text, `"]`), " \t\r\n=")
			if raw = extractJSON([]byte(rest)); raw != nil {
				return false
			}
		}
	})
	if raw == nil {
		return nil, errors.New("player response not found in watch page")
	}

	var player playerResponse
	if err := json.Unmarshal(raw, &player); err != nil {
		return nil, errors.Wrap(err, "decode player response")
	}
	return &player, nil
}

// bestTrack picks the track to download, or explains why there is none.
func (p *playerResponse) bestTrack(langs []string) (captionTrack, error) {
	const op = "youtube.bestTrack"

	if p.Captions == nil {
		if p.PlayabilityStatus != nil && p.PlayabilityStatus.Status != "OK" && p.PlayabilityStatus.Reason != "" {
			return captionTrack{}, apperrors.RetrievalFailed(op, nil, p.PlayabilityStatus.Reason)
		}
		return captionTrack{}, errors.Wrap(transcript.ErrNoTranscript, "no captions in player response")
	}

	tracks := p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return captionTrack{}, errors.Wrap(transcript.ErrNoTranscript, "no caption tracks")
	}

	track, ok := pickBestTrack(tracks, langs)
	if !ok {
		return captionTrack{}, errors.New("all caption tracks require a proof-of-origin token")
	}
	return track, nil
}

// needsPoToken reports whether a track URL can only be fetched from a browser.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack prefers manual tracks in a preferred language, then
// auto-generated ones, then any English track, then the first usable track.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}

	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// extractJSON returns the balanced JSON object at the start of b.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}

	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}

		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
