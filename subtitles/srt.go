// Package subtitles converts the WebVTT files served with catchup programmes
// into SubRip, which more players accept.
package subtitles

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/grafana/regexp"
	"github.com/jrsteele09/go-itvx/fetch"
	itvxerrors "github.com/jrsteele09/go-itvx/internal/errors"
)

var (
	blockSeparator = regexp.MustCompile(`\n{2,}`)
	timingLine     = regexp.MustCompile(`^\s*(\S+)\s+-->\s+(\S+)`)
	vttTimestamp   = regexp.MustCompile(`^(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})$`)
	cueTag         = regexp.MustCompile(`<(/?)([a-zA-Z]+)((?:\.[\w-]+)*)(?:\s[^>]*)?>|<\d{2}:[\d:.]+>`)
)

// colours that ITV uses as cue classes and SRT players understand.
var colours = map[string]bool{
	"white": true, "yellow": true, "cyan": true, "green": true,
	"magenta": true, "red": true, "blue": true, "black": true,
}

// DocumentFetcher is satisfied by *fetch.Client.
type DocumentFetcher interface {
	GetDocument(ctx context.Context, url string, req *fetch.Request) (string, error)
}

// Fetch downloads a WebVTT file and returns it as SRT.
func Fetch(ctx context.Context, client DocumentFetcher, url string) (string, error) {
	vtt, err := client.GetDocument(ctx, url, nil)
	if err != nil {
		return "", err
	}
	return ToSRT(vtt)
}

// ToSRT converts a WebVTT document. Cues are renumbered from 1, cue settings
// dropped, colour classes turned into font tags and other voice or class tags
// removed. Header, NOTE, STYLE and REGION blocks are skipped.
func ToSRT(vtt string) (string, error) {
	vtt = strings.TrimPrefix(vtt, "\ufeff")
	vtt = strings.ReplaceAll(vtt, "\r\n", "\n")
	vtt = strings.ReplaceAll(vtt, "\r", "\n")
	if !strings.HasPrefix(strings.TrimSpace(vtt), "WEBVTT") {
		return "", fmt.Errorf("%w: not a WebVTT document", itvxerrors.ErrParse)
	}

	var sb strings.Builder
	n := 0
	for i, block := range blockSeparator.Split(strings.TrimSpace(vtt), -1) {
		if i == 0 || isMetadataBlock(block) {
			continue
		}
		start, end, text, ok := parseCue(block)
		if !ok {
			continue
		}
		n++
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n", n, start, end, text)
	}
	return sb.String(), nil
}

func isMetadataBlock(block string) bool {
	for _, prefix := range []string{"NOTE", "STYLE", "REGION"} {
		if strings.HasPrefix(block, prefix) {
			return true
		}
	}
	return false
}

func parseCue(block string) (start, end, text string, ok bool) {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		m := timingLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		start, okStart := srtTimestamp(m[1])
		end, okEnd := srtTimestamp(m[2])
		if !okStart || !okEnd {
			return "", "", "", false
		}
		var body []string
		for _, l := range lines[i+1:] {
			if l = strings.TrimSpace(convertTags(l)); l != "" {
				body = append(body, l)
			}
		}
		if len(body) == 0 {
			return "", "", "", false
		}
		return start, end, strings.Join(body, "\n"), true
	}
	return "", "", "", false
}

// srtTimestamp turns "mm:ss.mmm" or "hh:mm:ss.mmm" into "hh:mm:ss,mmm".
func srtTimestamp(ts string) (string, bool) {
	m := vttTimestamp.FindStringSubmatch(ts)
	if m == nil {
		return "", false
	}
	hours := 0
	if m[1] != "" {
		hours, _ = strconv.Atoi(m[1])
	}
	return fmt.Sprintf("%02d:%s:%s,%s", hours, m[2], m[3], m[4]), true
}

// convertTags keeps i, b and u, maps colour classes to font tags and drops
// everything else, including inline timestamps.
func convertTags(line string) string {
	var (
		sb    strings.Builder
		stack []string
		last  int
	)
	for _, loc := range cueTag.FindAllStringSubmatchIndex(line, -1) {
		sb.WriteString(line[last:loc[0]])
		last = loc[1]
		if loc[4] < 0 {
			continue // inline timestamp
		}
		closing := line[loc[2]:loc[3]] == "/"
		name := strings.ToLower(line[loc[4]:loc[5]])
		classes := ""
		if loc[6] >= 0 {
			classes = line[loc[6]:loc[7]]
		}

		if closing {
			if len(stack) == 0 {
				continue
			}
			sb.WriteString(stack[len(stack)-1])
			stack = stack[:len(stack)-1]
			continue
		}
		switch {
		case name == "i" || name == "b" || name == "u":
			sb.WriteString("<" + name + ">")
			stack = append(stack, "</"+name+">")
		case name == "c" && colourOf(classes) != "":
			sb.WriteString(`<font color="` + colourOf(classes) + `">`)
			stack = append(stack, "</font>")
		default:
			stack = append(stack, "")
		}
	}
	sb.WriteString(line[last:])
	for i := len(stack) - 1; i >= 0; i-- {
		sb.WriteString(stack[i])
	}
	return sb.String()
}

func colourOf(classes string) string {
	for _, c := range strings.Split(strings.TrimPrefix(classes, "."), ".") {
		c = strings.ToLower(c)
		if colours[c] {
			return c
		}
	}
	return ""
}
