package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"Aivatar/backend/go/internal/models"
)

const (
	retrievalTopK       = 5
	similarityThreshold = 0.5
	urlFetchTimeout     = 5 * time.Second
	maxFallbackURLs     = 3
	fallbackCharCap     = 2000
	fallbackBodyCap     = 1 << 20
)

// knowledgeContext returns the retrieved background text for the message,
// or "" when nothing relevant exists. Vector search misses fall back to
// fetching a few of the agent's not-yet-indexed source URLs directly.
func (s *Service) knowledgeContext(ctx context.Context, agent *models.Agent, message string) string {
	chunks := s.searchChunks(ctx, agent, message)
	if len(chunks) > 0 {
		texts := make([]string, 0, len(chunks))
		for _, c := range chunks {
			texts = append(texts, c.Text)
		}
		return strings.Join(texts, "\n\n")
	}
	return s.fetchFallback(ctx, agent)
}

func (s *Service) searchChunks(ctx context.Context, agent *models.Agent, message string) []models.ScoredChunk {
	if s.embedder == nil || s.vectors == nil {
		return nil
	}
	vector, err := s.embedder.Embed(ctx, message)
	if err != nil {
		s.log.WithError(err).Warn("query embedding failed, skipping retrieval")
		return nil
	}
	results, err := s.vectors.Search(ctx, strconv.FormatUint(uint64(agent.ID), 10), retrievalTopK, vector)
	if err != nil {
		s.log.WithError(err).Warn("vector search failed, skipping retrieval")
		return nil
	}
	kept := results[:0]
	for _, r := range results {
		if r.Score >= similarityThreshold {
			kept = append(kept, r)
		}
	}
	return kept
}

// fetchFallback pulls raw page content for up to three pending knowledge
// URLs concurrently. Each page is converted to markdown and capped.
func (s *Service) fetchFallback(ctx context.Context, agent *models.Agent) string {
	urls, err := s.agents.PendingKnowledgeURLs(ctx, agent.ID, maxFallbackURLs)
	if err != nil {
		s.log.WithError(err).Warn("listing pending knowledge urls failed")
		return ""
	}
	if len(urls) == 0 {
		return ""
	}
	if len(urls) > maxFallbackURLs {
		urls = urls[:maxFallbackURLs]
	}

	texts := make([]string, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			text, err := s.fetchPage(gctx, url)
			if err != nil {
				s.log.WithError(err).WithField("url", url).Warn("knowledge url fetch failed")
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	// Per-URL errors are logged and swallowed above; Wait can only be nil.
	_ = g.Wait()

	var nonEmpty []string
	for _, t := range texts {
		if t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

func (s *Service) fetchPage(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, urlFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.web.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, fallbackBodyCap))
	if err != nil {
		return "", err
	}
	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		// Converter failures still leave usable plain text.
		markdown = string(body)
	}
	if title := pageTitle(body); title != "" {
		markdown = title + "\n\n" + markdown
	}
	markdown = strings.TrimSpace(markdown)
	if len(markdown) > fallbackCharCap {
		markdown = markdown[:fallbackCharCap]
	}
	return markdown, nil
}

// pageTitle extracts the document title so fetched pages stay attributable
// inside the assembled context.
func pageTitle(doc []byte) string {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return ""
	}
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return title
}
