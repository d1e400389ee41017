package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/feed"
)

// HeadlineScanner scrapes a static HTML headline listing. It expects the
// common article-card markup: <article> blocks with a linked heading, an
// optional summary paragraph, and a <time datetime=...> stamp.
type HeadlineScanner struct {
	name      string
	pageURL   string
	publisher string
	client    *http.Client
}

var _ feed.Provider = (*HeadlineScanner)(nil)

// NewHeadlineScanner wires one listing page; a nil client gets a 20s timeout.
func NewHeadlineScanner(name, pageURL, publisher string, client *http.Client) *HeadlineScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HeadlineScanner{
		name:      name,
		pageURL:   pageURL,
		publisher: publisher,
		client:    client,
	}
}

// Name identifies the provider inside the registry.
func (h *HeadlineScanner) Name() string {
	return h.name
}

// Fetch downloads the listing page and extracts articles newer than
// req.Since, capped at req.Max.
func (h *HeadlineScanner) Fetch(ctx context.Context, req feed.Request) ([]domain.Article, error) {
	doc, err := h.fetchDocument(ctx)
	if err != nil {
		return nil, err
	}

	var articles []domain.Article
	doc.Find("article").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		article, ok := h.parseCard(card)
		if !ok {
			return true
		}
		if !req.Since.IsZero() && article.PublishedAt.Before(req.Since) {
			return true
		}
		articles = append(articles, article)
		return req.Max <= 0 || len(articles) < req.Max
	})

	return articles, nil
}

func (h *HeadlineScanner) fetchDocument(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsPulse/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("headline page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	return doc, nil
}

func (h *HeadlineScanner) parseCard(card *goquery.Selection) (domain.Article, bool) {
	link := card.Find("h2 a, h3 a").First()
	title := strings.TrimSpace(link.Text())
	href, _ := link.Attr("href")
	if title == "" || href == "" {
		return domain.Article{}, false
	}
	href = h.absoluteURL(href)

	summary := strings.TrimSpace(card.Find("p").First().Text())

	publishedAt := time.Now().UTC()
	if stamp, exists := card.Find("time").First().Attr("datetime"); exists {
		if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(stamp)); err == nil {
			publishedAt = parsed.UTC()
		}
	}

	return domain.Article{
		Source:      h.name,
		Title:       title,
		Description: summary,
		Publisher:   h.publisher,
		URL:         href,
		PublishedAt: publishedAt,
	}, true
}

func (h *HeadlineScanner) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(h.pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
