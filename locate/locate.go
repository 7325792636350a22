// Package locate resolves a video page URL into candidate media URLs
// plus whatever metadata the strategies can scrape. Each platform
// defines an ordered strategy list; strategies are independent and a
// strategy's internal failure only means "try the next one".
package locate

import (
	"context"
	"io"
	"net/http"
	"os/exec"

	"github.com/sirupsen/logrus"
	"github.com/viettran1502/vidscribe/models"
)

// Result is the outcome of a locate attempt. Success means at least one
// candidate was found; Method names the strategy that produced it.
type Result struct {
	Success    bool
	Method     string
	Title      string
	Author     string
	Candidates []models.VideoCandidate
	Error      string
}

// Locator resolves a URL to candidate media URLs.
type Locator interface {
	Locate(ctx context.Context, url string) Result
}

// CommandRunner executes an external tool and returns its stdout.
// Injectable so strategy tests never shell out.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

type strategy struct {
	name string
	run  func(ctx context.Context) (Result, bool)
}

// tryStrategies runs strategies in priority order and returns the first
// that yields candidates. Exhaustion returns a failure Result carrying
// the aggregate error tag.
func tryStrategies(ctx context.Context, strategies []strategy, exhaustedTag string) Result {
	for _, s := range strategies {
		if ctx.Err() != nil {
			break
		}
		result, ok := s.run(ctx)
		if ok && len(result.Candidates) > 0 {
			result.Success = true
			result.Method = s.name
			logrus.WithFields(logrus.Fields{
				"strategy":   s.name,
				"candidates": len(result.Candidates),
			}).Info("Locate strategy succeeded")
			return result
		}
		logrus.WithField("strategy", s.name).Debug("Locate strategy yielded nothing")
	}
	return Result{Success: false, Error: exhaustedTag}
}

func fetchBody(ctx context.Context, client *http.Client, url string, headers map[string]string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", false
	}
	return string(body), true
}

func toCandidates(urls []string, title, author string) []models.VideoCandidate {
	seen := make(map[string]struct{}, len(urls))
	out := make([]models.VideoCandidate, 0, len(urls))
	for _, u := range urls {
		if _, dup := seen[u]; dup || u == "" {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, models.VideoCandidate{MediaURL: u, Title: title, Author: author})
	}
	return out
}
