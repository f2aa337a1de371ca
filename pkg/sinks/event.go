package sinks

import "time"

// ContentEvent is the payload announced downstream after a pipeline run that
// saved new content. The site webhook uses it to revalidate rendered pages.
type ContentEvent struct {
	RunAt      time.Time    `json:"run_at"`
	SavedCount int          `json:"saved_count"`
	Articles   []ArticleRef `json:"articles"`
}

// ArticleRef points at one newly saved record.
type ArticleRef struct {
	Title string `json:"title"`
	UID   string `json:"uid"`
	Link  string `json:"link"`
}

// NewContentEvent builds the announcement for the given saved articles.
func NewContentEvent(articles []ArticleRef) ContentEvent {
	return ContentEvent{
		RunAt:      time.Now().UTC(),
		SavedCount: len(articles),
		Articles:   articles,
	}
}
