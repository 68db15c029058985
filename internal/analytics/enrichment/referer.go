package enrichment

import (
	"net/url"
	"strings"
)

// Traffic sources reported by RefererClassifier.
const (
	SourceDirect   = "Direct"
	SourceSearch   = "Search"
	SourceSocial   = "Social"
	SourceAI       = "AI"
	SourceReferral = "Referral"
)

// RefererClassifier classifies traffic sources from referer URLs.
type RefererClassifier struct {
	categories []refererCategory
}

type refererCategory struct {
	source  string
	domains []string
}

// NewRefererClassifier creates a new RefererClassifier with predefined domain lists.
func NewRefererClassifier() *RefererClassifier {
	return &RefererClassifier{
		categories: []refererCategory{
			{
				source: SourceSearch,
				domains: []string{
					"google.com", "bing.com", "yahoo.com", "duckduckgo.com",
					"baidu.com", "yandex.ru", "ecosia.org",
				},
			},
			{
				source: SourceSocial,
				domains: []string{
					"facebook.com", "twitter.com", "t.co", "x.com", "instagram.com",
					"linkedin.com", "pinterest.com", "reddit.com", "tiktok.com",
					"youtube.com", "threads.net", "mastodon.social",
				},
			},
			{
				source: SourceAI,
				domains: []string{
					"chatgpt.com", "claude.ai", "gemini.google.com",
					"perplexity.ai", "copilot.microsoft.com",
				},
			},
		},
	}
}

// ClassifySource classifies the traffic source of a referrer.
// A nil or empty referrer is a direct visit.
func (r *RefererClassifier) ClassifySource(referrer *string) string {
	if referrer == nil || *referrer == "" {
		return SourceDirect
	}

	parsed, err := url.Parse(*referrer)
	if err != nil || parsed.Hostname() == "" {
		return SourceDirect
	}

	hostname := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")

	// AI platforms can live under search domains (gemini.google.com), check exact hosts first.
	for _, domain := range r.categories[2].domains {
		if matchesDomain(hostname, domain) {
			return SourceAI
		}
	}
	for _, category := range r.categories {
		for _, domain := range category.domains {
			if matchesDomain(hostname, domain) {
				return category.source
			}
		}
	}

	return SourceReferral
}

func matchesDomain(hostname, domain string) bool {
	return hostname == domain || strings.HasSuffix(hostname, "."+domain)
}
