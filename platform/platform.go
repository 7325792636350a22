// Package platform identifies which video platform a URL belongs to and
// normalizes URLs into canonical cache keys.
package platform

import (
	"net/url"
	"regexp"
	"strings"
)

type Platform string

const (
	YouTube  Platform = "youtube"
	TikTok   Platform = "tiktok"
	Facebook Platform = "facebook"
	Douyin   Platform = "douyin"
	Unknown  Platform = "unknown"
)

// Supported is the closed set of platforms with an extraction pipeline.
var Supported = []Platform{YouTube, TikTok, Facebook, Douyin}

// Identify determines the platform from the URL's host.
func Identify(raw string) Platform {
	u, err := url.Parse(raw)
	if err != nil {
		return Unknown
	}
	host := strings.ToLower(u.Hostname())

	switch {
	case strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be"):
		return YouTube
	case strings.Contains(host, "tiktok.com"):
		return TikTok
	case strings.Contains(host, "facebook.com") || strings.Contains(host, "fb.watch"):
		return Facebook
	case strings.Contains(host, "douyin.com"):
		return Douyin
	default:
		return Unknown
	}
}

// Normalize strips the fragment and trailing slashes so that equivalent
// URLs map to the same cache key. Normalizing an already-normalized URL
// returns the same string.
func Normalize(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimRight(strings.TrimSpace(raw), "/")
	}
	u.Fragment = ""
	u.RawFragment = ""
	return strings.TrimRight(u.String(), "/")
}

var (
	youtubeIDRe  = regexp.MustCompile(`(?:v=|/)([a-zA-Z0-9_-]{11})`)
	tiktokIDRe   = regexp.MustCompile(`/video/(\d+)`)
	facebookIDRe = []*regexp.Regexp{
		regexp.MustCompile(`/videos/(\d+)`),
		regexp.MustCompile(`/reel/(\d+)`),
		regexp.MustCompile(`[?&]v=(\d+)`),
		regexp.MustCompile(`/(\d+)/?$`),
	}
	douyinIDRe = []*regexp.Regexp{
		regexp.MustCompile(`/video/(\d+)`),
		regexp.MustCompile(`modal_id=(\d+)`),
		regexp.MustCompile(`/(\d+)/?$`),
		regexp.MustCompile(`v\.douyin\.com/([A-Za-z0-9]+)`),
	}
)

// YouTubeID extracts the 11-character video ID.
func YouTubeID(raw string) (string, bool) {
	return firstGroup(raw, youtubeIDRe)
}

// TikTokID extracts the numeric video ID from a canonical TikTok URL.
func TikTokID(raw string) (string, bool) {
	return firstGroup(raw, tiktokIDRe)
}

// FacebookID extracts the numeric video ID from /videos/, /reel/ or
// watch?v= style URLs.
func FacebookID(raw string) (string, bool) {
	for _, re := range facebookIDRe {
		if id, ok := firstGroup(raw, re); ok {
			return id, true
		}
	}
	return "", false
}

// DouyinID extracts the video ID from the URL patterns Douyin uses.
func DouyinID(raw string) (string, bool) {
	for _, re := range douyinIDRe {
		if id, ok := firstGroup(raw, re); ok {
			return id, true
		}
	}
	return "", false
}

func firstGroup(raw string, re *regexp.Regexp) (string, bool) {
	m := re.FindStringSubmatch(raw)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
