package collect

import (
	"net/url"
	"strings"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

// Reliability ceilings per source class. A citation's reliability never
// rises above the ceiling of the class it was collected from.
const (
	officialCeiling  = 1.0
	communityCeiling = 0.8
	forumCeiling     = 0.7
)

// SourceClassifier maps citation URLs to a source type and a reliability
// ceiling based on the configured domain lists.
type SourceClassifier struct {
	official map[string]bool
	forums   map[string]bool
}

// NewSourceClassifier builds a classifier from the collection configuration
func NewSourceClassifier(cfg model.CollectionConfig) *SourceClassifier {
	c := &SourceClassifier{
		official: make(map[string]bool, len(cfg.OfficialDomains)),
		forums:   make(map[string]bool, len(cfg.ForumDomains)),
	}
	for _, d := range cfg.OfficialDomains {
		c.official[strings.ToLower(d)] = true
	}
	for _, d := range cfg.ForumDomains {
		c.forums[strings.ToLower(d)] = true
	}
	return c
}

// Classify returns the source type and reliability ceiling for a URL.
// Unparseable URLs are treated as community sources.
func (c *SourceClassifier) Classify(rawURL string) (model.SourceType, float64) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return model.SourceTypeCommunity, communityCeiling
	}

	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")

	if c.matches(c.official, host) {
		return model.SourceTypeOfficial, officialCeiling
	}
	if c.matches(c.forums, host) {
		return model.SourceTypeCommunity, forumCeiling
	}
	return model.SourceTypeCommunity, communityCeiling
}

// Bound clamps a provider-declared reliability to [0, ceiling]
func (c *SourceClassifier) Bound(reliability float64, rawURL string) float64 {
	_, ceiling := c.Classify(rawURL)
	if reliability < 0 {
		return 0
	}
	if reliability > ceiling {
		return ceiling
	}
	return reliability
}

// matches checks the host and its parent domains against a domain set
func (c *SourceClassifier) matches(set map[string]bool, host string) bool {
	if set[host] {
		return true
	}
	// Subdomains inherit their parent's classification.
	for domain := range set {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
