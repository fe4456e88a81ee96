package stream

import (
	"strconv"

	"github.com/grafana/regexp"
)

// PlaylistResponse is the body returned by both playlist endpoints. ITV reports
// some failures through StatusCode with an HTTP 200.
type PlaylistResponse struct {
	StatusCode int      `json:"StatusCode,omitempty"`
	Message    string   `json:"Message,omitempty"`
	Playlist   Playlist `json:"Playlist"`
}

type Playlist struct {
	VideoType    string `json:"VideoType,omitempty"`
	ProductionID string `json:"ProductionId,omitempty"`
	Video        Video  `json:"Video"`
}

type Video struct {
	Base           string          `json:"Base,omitempty"`
	MediaFiles     []MediaFile     `json:"MediaFiles,omitempty"`
	VideoLocations []VideoLocation `json:"VideoLocations,omitempty"`
	Subtitles      []Subtitle      `json:"Subtitles,omitempty"`
}

// VideoLocation is a live stream entry.
type VideoLocation struct {
	URL           string `json:"Url"`
	StartAgainURL string `json:"StartAgainUrl,omitempty"`
	KeyServiceURL string `json:"KeyServiceUrl,omitempty"`
}

// MediaFile is one catchup rendition.
type MediaFile struct {
	Href          string `json:"Href"`
	KeyServiceURL string `json:"KeyServiceUrl,omitempty"`
	Resolution    string `json:"Resolution,omitempty"`
}

type Subtitle struct {
	Href string `json:"Href"`
}

var (
	dimensionsPattern = regexp.MustCompile(`\d+\s*[xX]\s*(\d+)`)
	numberPattern     = regexp.MustCompile(`\d+`)
)

// height reads "1080", "720p", "1080p50" or "1920x1080" as a vertical
// resolution. 0 when there is nothing to read.
func (m MediaFile) height() int {
	num := numberPattern.FindString(m.Resolution)
	if dims := dimensionsPattern.FindStringSubmatch(m.Resolution); dims != nil {
		num = dims[1]
	}
	h, _ := strconv.Atoi(num)
	return h
}

// bestMediaFile picks the highest resolution rendition, or the first one when
// none declares a resolution.
func bestMediaFile(files []MediaFile) (MediaFile, bool) {
	if len(files) == 0 {
		return MediaFile{}, false
	}
	best, bestHeight := files[0], files[0].height()
	for _, f := range files[1:] {
		if h := f.height(); h > bestHeight {
			best, bestHeight = f, h
		}
	}
	return best, true
}
