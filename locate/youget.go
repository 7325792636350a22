package locate

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
)

type youGetInfo struct {
	Title   string                     `json:"title"`
	Streams map[string]json.RawMessage `json:"streams"`
}

type youGetStream struct {
	Src json.RawMessage `json:"src"`
}

var looseURLRe = regexp.MustCompile(`https?://[^\s<>"]+`)

// youGetStrategy shells out to you-get, the generic extraction tool,
// as a last-resort locator. Output is JSON describing streams when
// we're lucky, freeform text containing URLs when we're not.
func youGetStrategy(ctx context.Context, runCmd CommandRunner, url string) (Result, bool) {
	out, err := runCmd(ctx, "you-get", "--json", url)
	if err != nil || len(out) == 0 {
		return Result{}, false
	}

	var info youGetInfo
	if err := json.Unmarshal(out, &info); err == nil && len(info.Streams) > 0 {
		var urls []string
		for _, raw := range info.Streams {
			var stream youGetStream
			if json.Unmarshal(raw, &stream) != nil {
				continue
			}
			// src is either a single URL or a list of segment URLs.
			var single string
			if json.Unmarshal(stream.Src, &single) == nil {
				urls = append(urls, single)
				continue
			}
			var many []string
			if json.Unmarshal(stream.Src, &many) == nil {
				urls = append(urls, many...)
			}
		}
		if len(urls) > 0 {
			title := info.Title
			if title == "" {
				title = "Video"
			}
			return Result{Title: title, Candidates: toCandidates(urls, title, "")}, true
		}
	}

	// Freeform output: pull anything that looks like a media URL.
	var urls []string
	for _, m := range looseURLRe.FindAllString(string(out), -1) {
		if strings.Contains(m, ".mp4") || strings.Contains(m, "video") {
			urls = append(urls, m)
		}
	}
	if len(urls) > 0 {
		return Result{Candidates: toCandidates(urls, "", "")}, true
	}
	return Result{}, false
}
