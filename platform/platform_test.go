package platform

import (
	"testing"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", YouTube},
		{"https://youtu.be/dQw4w9WgXcQ", YouTube},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", YouTube},
		{"https://www.tiktok.com/@user/video/7123456789012345678", TikTok},
		{"https://vt.tiktok.com/ZSabcdef/", TikTok},
		{"https://www.facebook.com/watch?v=123456789", Facebook},
		{"https://fb.watch/abc123/", Facebook},
		{"https://www.douyin.com/video/7123456789012345678", Douyin},
		{"https://vimeo.com/12345", Unknown},
		{"https://example.com/video", Unknown},
		{"not a url at all ://", Unknown},
	}

	for _, tt := range tests {
		if got := Identify(tt.url); got != tt.want {
			t.Errorf("Identify(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.youtube.com/watch?v=abc12345678", "https://www.youtube.com/watch?v=abc12345678"},
		{"https://www.youtube.com/watch?v=abc12345678#t=30", "https://www.youtube.com/watch?v=abc12345678"},
		{"https://www.tiktok.com/@user/video/123/", "https://www.tiktok.com/@user/video/123"},
		{"  https://example.com/a/  ", "https://example.com/a"},
		{"https://example.com/a/#frag", "https://example.com/a"},
		// Query parameters survive normalization; only the fragment and
		// trailing slashes go.
		{"https://example.com/v/1?a=1#frag", "https://example.com/v/1?a=1"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	urls := []string{
		"https://www.youtube.com/watch?v=abc12345678#frag",
		"https://www.tiktok.com/@user/video/123/",
		"https://www.facebook.com/user/videos/456/?mibextid=xyz",
	}

	for _, url := range urls {
		once := Normalize(url)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", url, once, twice)
		}
	}
}

func TestYouTubeID(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=short", "", false},
	}

	for _, tt := range tests {
		id, ok := YouTubeID(tt.url)
		if ok != tt.wantOK || id != tt.wantID {
			t.Errorf("YouTubeID(%q) = (%q, %v), want (%q, %v)", tt.url, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestTikTokID(t *testing.T) {
	id, ok := TikTokID("https://www.tiktok.com/@someone/video/7123456789012345678")
	if !ok || id != "7123456789012345678" {
		t.Errorf("TikTokID = (%q, %v)", id, ok)
	}

	if _, ok := TikTokID("https://www.tiktok.com/@someone"); ok {
		t.Error("expected no ID for profile URL")
	}
}

func TestFacebookID(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
	}{
		{"https://www.facebook.com/user/videos/123456789", "123456789"},
		{"https://www.facebook.com/reel/987654321", "987654321"},
		{"https://www.facebook.com/watch?v=555444333", "555444333"},
		{"https://fb.watch/page/111222333/", "111222333"},
	}

	for _, tt := range tests {
		id, ok := FacebookID(tt.url)
		if !ok || id != tt.wantID {
			t.Errorf("FacebookID(%q) = (%q, %v), want %q", tt.url, id, ok, tt.wantID)
		}
	}
}

func TestDouyinID(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
	}{
		{"https://www.douyin.com/video/7123456789012345678", "7123456789012345678"},
		{"https://www.douyin.com/discover?modal_id=7000000000000000001", "7000000000000000001"},
		{"https://v.douyin.com/iAbCdEf", "iAbCdEf"},
	}

	for _, tt := range tests {
		id, ok := DouyinID(tt.url)
		if !ok || id != tt.wantID {
			t.Errorf("DouyinID(%q) = (%q, %v), want %q", tt.url, id, ok, tt.wantID)
		}
	}
}
