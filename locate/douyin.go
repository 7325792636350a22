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

// Mobile user agents the Douyin endpoints respond to.
var douyinUserAgents = []string{
	"Mozilla/5.0 (Linux; Android 11; ONEPLUS A6000) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/95.0.4638.74 Mobile Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 14_8 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.2 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 10; SM-G973F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/94.0.4606.85 Mobile Safari/537.36",
}

// DouyinLocator tries, in order: the item-info API endpoints, web app
// page scraping, and you-get as a generic last resort.
type DouyinLocator struct {
	client    *http.Client
	runCmd    CommandRunner
	userAgent string
	extractID func(string) (string, bool)
}

func NewDouyinLocator(client *http.Client, runCmd CommandRunner, extractID func(string) (string, bool)) *DouyinLocator {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if runCmd == nil {
		runCmd = defaultCommandRunner
	}
	return &DouyinLocator{
		client:    client,
		runCmd:    runCmd,
		userAgent: douyinUserAgents[rand.Intn(len(douyinUserAgents))],
		extractID: extractID,
	}
}

func (l *DouyinLocator) Locate(ctx context.Context, url string) Result {
	videoID, ok := l.extractID(url)
	if !ok {
		// Some share URLs carry no parseable ID; let the endpoints that
		// accept full URLs try anyway.
		videoID = url
	}

	strategies := []strategy{
		{name: "api-iteminfo", run: func(ctx context.Context) (Result, bool) {
			return l.apiStrategy(ctx, videoID)
		}},
		{name: "webapp-scrape", run: func(ctx context.Context) (Result, bool) {
			return l.webAppStrategy(ctx, videoID)
		}},
		{name: "you-get", run: func(ctx context.Context) (Result, bool) {
			return youGetStrategy(ctx, l.runCmd, url)
		}},
	}

	return tryStrategies(ctx, strategies, "all douyin locate strategies failed")
}

// PageTitle fetches the bare page title: the title-only fallback when
// every strategy is exhausted.
func (l *DouyinLocator) PageTitle(ctx context.Context, url string) (string, bool) {
	body, ok := fetchBody(ctx, l.client, url, map[string]string{"User-Agent": l.userAgent})
	if !ok {
		return "", false
	}
	if m := htmlTitleRe.FindStringSubmatch(body); len(m) > 1 {
		title := strings.TrimSpace(m[1])
		if title != "" {
			return title, true
		}
	}
	return "", false
}

type douyinItemInfo struct {
	AwemeList []struct {
		Desc   string `json:"desc"`
		Author struct {
			Nickname string `json:"nickname"`
		} `json:"author"`
		Video map[string]json.RawMessage `json:"video"`
	} `json:"aweme_list"`
}

type douyinAddr struct {
	URLList []string `json:"url_list"`
}

var douyinTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"play_addr":{[^}]*"url_list":\["([^"]+)"`),
	regexp.MustCompile(`"download_addr":{[^}]*"url_list":\["([^"]+)"`),
	regexp.MustCompile(`"url":"([^"]*\.mp4[^"]*)`),
	regexp.MustCompile(`"video_url":"([^"]+)"`),
}

func (l *DouyinLocator) apiStrategy(ctx context.Context, videoID string) (Result, bool) {
	endpoints := []string{
		fmt.Sprintf("https://www.douyin.com/web/api/v2/aweme/iteminfo/?item_ids=%s", videoID),
		fmt.Sprintf("https://www.iesdouyin.com/web/api/v2/aweme/iteminfo/?item_ids=%s", videoID),
		fmt.Sprintf("https://aweme.snssdk.com/aweme/v1/aweme/detail/?aweme_id=%s", videoID),
	}

	headers := map[string]string{
		"User-Agent":       l.userAgent,
		"Referer":          "https://www.douyin.com/",
		"Origin":           "https://www.douyin.com",
		"X-Requested-With": "XMLHttpRequest",
	}

	for _, endpoint := range endpoints {
		body, ok := fetchBody(ctx, l.client, endpoint, headers)
		if !ok {
			continue
		}

		var info douyinItemInfo
		if err := json.Unmarshal([]byte(body), &info); err == nil && len(info.AwemeList) > 0 {
			aweme := info.AwemeList[0]
			var urls []string
			for _, key := range []string{"play_addr", "download_addr", "play_addr_lowbr"} {
				raw, present := aweme.Video[key]
				if !present {
					continue
				}
				var addr douyinAddr
				if json.Unmarshal(raw, &addr) == nil {
					urls = append(urls, addr.URLList...)
				}
			}
			if len(urls) > 0 {
				title := aweme.Desc
				if title == "" {
					title = "Douyin Video"
				}
				return Result{
					Title:      title,
					Author:     aweme.Author.Nickname,
					Candidates: toCandidates(urls, title, aweme.Author.Nickname),
				}, true
			}
			continue
		}

		// Not JSON (or empty), so scan the raw response for media URLs.
		var urls []string
		for _, re := range douyinTextPatterns {
			for _, m := range re.FindAllStringSubmatch(body, -1) {
				if strings.Contains(m[1], "http") {
					urls = append(urls, unescapeJSONURL(m[1]))
				}
			}
		}
		if len(urls) > 0 {
			return Result{Candidates: toCandidates(urls, "Douyin Video", "")}, true
		}
	}
	return Result{}, false
}

var (
	douyinPagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`"playAddr":\[{"src":"([^"]+)"`),
		regexp.MustCompile(`"download_addr":{"url_list":\["([^"]+)"`),
		regexp.MustCompile(`"play_addr":{"url_list":\["([^"]+)"`),
		regexp.MustCompile(`"src":"([^"]*aweme[^"]*\.mp4[^"]*)`),
		regexp.MustCompile(`videoUrl":"([^"]+)"`),
	}
	douyinTitlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`"desc":"([^"]+)"`),
		regexp.MustCompile(`<title[^>]*>([^<]+)</title>`),
	}
	htmlTitleRe = regexp.MustCompile(`<title[^>]*>([^<]+)</title>`)
)

func (l *DouyinLocator) webAppStrategy(ctx context.Context, videoID string) (Result, bool) {
	pages := []string{
		fmt.Sprintf("https://www.douyin.com/video/%s", videoID),
		fmt.Sprintf("https://www.iesdouyin.com/share/video/%s", videoID),
	}

	headers := map[string]string{
		"User-Agent":      l.userAgent,
		"Referer":         "https://www.douyin.com/",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
	}

	for _, page := range pages {
		body, ok := fetchBody(ctx, l.client, page, headers)
		if !ok {
			continue
		}

		var urls []string
		for _, re := range douyinPagePatterns {
			for _, m := range re.FindAllStringSubmatch(body, -1) {
				if strings.Contains(m[1], "http") {
					urls = append(urls, unescapeJSONURL(m[1]))
				}
			}
		}
		if len(urls) == 0 {
			continue
		}

		title := "Douyin Video"
		for _, re := range douyinTitlePatterns {
			if m := re.FindStringSubmatch(body); len(m) > 1 && len(strings.TrimSpace(m[1])) > 5 {
				title = strings.TrimSpace(m[1])
				if len(title) > 100 {
					title = title[:100]
				}
				break
			}
		}

		return Result{Title: title, Candidates: toCandidates(urls, title, "")}, true
	}
	return Result{}, false
}

func unescapeJSONURL(u string) string {
	u = strings.ReplaceAll(u, `\/`, "/")
	u = strings.ReplaceAll(u, `\u0026`, "&")
	return u
}
