package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var facebookUserAgents = []string{
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_1_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 13; SM-S908B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Mobile Safari/537.36",
	"Mozilla/5.0 (Linux; Android 12; SM-G998B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/111.0.0.0 Mobile Safari/537.36",
}

// FacebookLocator tries, in order: mobile web app scraping (the mobile
// hosts serve lighter markup with the CDN URLs inline), a Graph API
// probe, and CDN URL-pattern probing.
type FacebookLocator struct {
	client    *http.Client
	userAgent string
	extractID func(string) (string, bool)
}

func NewFacebookLocator(client *http.Client, extractID func(string) (string, bool)) *FacebookLocator {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &FacebookLocator{
		client:    client,
		userAgent: facebookUserAgents[rand.Intn(len(facebookUserAgents))],
		extractID: extractID,
	}
}

func (l *FacebookLocator) Locate(ctx context.Context, url string) Result {
	videoID, ok := l.extractID(url)
	if !ok {
		return Result{Success: false, Error: "could not extract facebook video ID"}
	}

	strategies := []strategy{
		{name: "mobile-webapp", run: func(ctx context.Context) (Result, bool) {
			return l.mobileStrategy(ctx, videoID)
		}},
		{name: "graph-api", run: func(ctx context.Context) (Result, bool) {
			return l.graphStrategy(ctx, videoID)
		}},
		{name: "cdn-probe", run: func(ctx context.Context) (Result, bool) {
			return l.cdnStrategy(ctx, videoID)
		}},
	}

	return tryStrategies(ctx, strategies, "all facebook locate strategies failed")
}

var (
	fbVideoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"playable_url":"([^"]+)"`),
		regexp.MustCompile(`"hd_src":"([^"]+)"`),
		regexp.MustCompile(`"sd_src":"([^"]+)"`),
		regexp.MustCompile(`"src":"([^"]+\.mp4[^"]*)`),
		regexp.MustCompile(`"url":"([^"]*fbcdn[^"]*\.mp4[^"]*)`),
		regexp.MustCompile(`"contentUrl":"([^"]+\.mp4[^"]*)`),
		regexp.MustCompile(`"video_url":"([^"]+)"`),
	}
	fbTitlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`property="og:title"[^>]*content="([^"]+)"`),
		regexp.MustCompile(`<title[^>]*>([^<]+)</title>`),
		regexp.MustCompile(`"title":"([^"]+)"`),
	}
)

func (l *FacebookLocator) mobileStrategy(ctx context.Context, videoID string) (Result, bool) {
	pages := []string{
		fmt.Sprintf("https://m.facebook.com/watch/?v=%s", videoID),
		fmt.Sprintf("https://m.facebook.com/video.php?v=%s", videoID),
		fmt.Sprintf("https://touch.facebook.com/watch/?v=%s", videoID),
		fmt.Sprintf("https://mbasic.facebook.com/watch/?v=%s", videoID),
	}

	headers := map[string]string{
		"User-Agent": l.userAgent,
		"Referer":    "https://www.google.com/",
		"Accept":     "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	}

	for _, page := range pages {
		body, ok := fetchBody(ctx, l.client, page, headers)
		if !ok {
			continue
		}

		var urls []string
		for _, re := range fbVideoPatterns {
			for _, m := range re.FindAllStringSubmatch(body, -1) {
				clean := unescapeJSONURL(m[1])
				if strings.Contains(clean, "http") && (strings.Contains(clean, ".mp4") || strings.Contains(clean, "video")) {
					urls = append(urls, clean)
				}
			}
		}
		if len(urls) == 0 {
			continue
		}

		title := "Facebook Video"
		for _, re := range fbTitlePatterns {
			if m := re.FindStringSubmatch(body); len(m) > 1 && len(strings.TrimSpace(m[1])) > 5 {
				title = strings.TrimSpace(m[1])
				if len(title) > 200 {
					title = title[:200]
				}
				break
			}
		}

		return Result{Title: title, Candidates: toCandidates(urls, title, "")}, true
	}
	return Result{}, false
}

func (l *FacebookLocator) graphStrategy(ctx context.Context, videoID string) (Result, bool) {
	endpoints := []string{
		fmt.Sprintf("https://graph.facebook.com/v18.0/%s?fields=source,title", videoID),
		fmt.Sprintf("https://graph.facebook.com/%s?fields=source,title,description", videoID),
	}

	for _, endpoint := range endpoints {
		body, ok := fetchBody(ctx, l.client, endpoint, map[string]string{"User-Agent": l.userAgent})
		if !ok {
			continue
		}

		var data struct {
			Source string          `json:"source"`
			Title  string          `json:"title"`
			Error  json.RawMessage `json:"error"`
		}
		if json.Unmarshal([]byte(body), &data) != nil || data.Error != nil {
			continue
		}
		if data.Source != "" {
			title := data.Title
			if title == "" {
				title = "Facebook Video"
			}
			return Result{Title: title, Candidates: toCandidates([]string{data.Source}, title, "")}, true
		}
	}
	return Result{}, false
}

func (l *FacebookLocator) cdnStrategy(ctx context.Context, videoID string) (Result, bool) {
	probes := []string{
		fmt.Sprintf("https://scontent.xx.fbcdn.net/v/t42.9040-2/%s_n.mp4", videoID),
		fmt.Sprintf("https://video.xx.fbcdn.net/v/t42.9040-2/%s_n.mp4", videoID),
	}

	for _, probe := range probes {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, probe, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", l.userAgent)

		resp, err := l.client.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK && strings.Contains(resp.Header.Get("Content-Type"), "video") {
			return Result{Title: "Facebook Video", Candidates: toCandidates([]string{probe}, "Facebook Video", "")}, true
		}
	}
	return Result{}, false
}
