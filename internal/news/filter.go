package news

import (
	"strings"

	"github.com/viniciusvds1/rubro-news-pipeline/internal/domain"
)

// FilterRelevant keeps articles whose title contains the topic token but not
// the exclusion token, both case-insensitive. Pure function, no I/O.
func FilterRelevant(articles []domain.CandidateArticle, topic, exclude string) []domain.CandidateArticle {
	topic = strings.ToLower(strings.TrimSpace(topic))
	exclude = strings.ToLower(strings.TrimSpace(exclude))

	out := make([]domain.CandidateArticle, 0, len(articles))
	for _, a := range articles {
		title := strings.ToLower(a.Title)
		if topic != "" && !strings.Contains(title, topic) {
			continue
		}
		if exclude != "" && strings.Contains(title, exclude) {
			continue
		}
		out = append(out, a)
	}
	return out
}
