package classifier

import (
	"strings"

	"github.com/botwall-io/botwall/internal/models"
)

// familyRule maps a user-agent substring to a bot family label.
type familyRule struct {
	needle string // lowercase substring
	family string
}

// knownFamilies are checked before the generic markers so well-known
// crawlers get a useful label.
var knownFamilies = []familyRule{
	{"googlebot", "googlebot"},
	{"bingbot", "bingbot"},
	{"yandexbot", "yandexbot"},
	{"duckduckbot", "duckduckbot"},
	{"baiduspider", "baiduspider"},
	{"gptbot", "gptbot"},
	{"chatgpt-user", "gptbot"},
	{"claudebot", "claudebot"},
	{"anthropic-ai", "claudebot"},
	{"ccbot", "ccbot"},
	{"perplexitybot", "perplexitybot"},
	{"bytespider", "bytespider"},
	{"amazonbot", "amazonbot"},
	{"applebot", "applebot"},
	{"facebookexternalhit", "facebook"},
	{"ahrefsbot", "ahrefsbot"},
	{"semrushbot", "semrushbot"},
}

// genericMarkers flag automated clients that do not map to a family.
var genericMarkers = []string{
	"bot", "crawler", "spider", "scraper", "fetch",
	"curl/", "wget/", "python-requests", "go-http-client",
	"httpclient", "headlesschrome", "phantomjs",
}

// RuleBased is the minimal viable classification strategy: substring
// matching against known crawler user agents. Stateless and safe for
// concurrent use.
type RuleBased struct{}

// NewRuleBased returns the default rule-based classifier.
func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

func (c *RuleBased) Classify(userAgent, path string) Result {
	ua := strings.ToLower(strings.TrimSpace(userAgent))

	// An empty user agent is suspicious but not conclusive.
	if ua == "" {
		return Result{Classification: models.ClassificationUncertain}
	}

	for _, rule := range knownFamilies {
		if strings.Contains(ua, rule.needle) {
			return Result{
				Classification: models.ClassificationBot,
				BotFamily:      rule.family,
			}
		}
	}

	for _, marker := range genericMarkers {
		if strings.Contains(ua, marker) {
			return Result{Classification: models.ClassificationBot}
		}
	}

	if strings.HasPrefix(ua, "mozilla/") {
		return Result{Classification: models.ClassificationHuman}
	}

	return Result{Classification: models.ClassificationUncertain}
}
