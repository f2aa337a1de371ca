package domain

import "time"

// Domain contains the core models shared across pipeline stages.

// CandidateArticle is a raw item returned by the news search API. It lives
// only for the duration of one run; title is the natural dedup key.
type CandidateArticle struct {
	Title       string
	Description string
	URL         string
	ImageURL    string
	PublishedAt time.Time
	SourceName  string
}

// ContentRecord is the persisted, publishable unit written to the news table.
type ContentRecord struct {
	Title       string
	Content     string
	ImageURL    string
	Date        time.Time
	UID         string
	IsPublished bool
	Category    string
}

// PromotedProduct is a read-only view of the most recent catalog product.
type PromotedProduct struct {
	Title     string
	Price     string
	FullPrice string
	ImageURL  string
	Link      string
}

// PostOutcome records the social publish result for one item.
type PostOutcome struct {
	Title     string
	Published bool
}

// PublishResult is the pipeline's output contract for a single run.
type PublishResult struct {
	Success       bool
	SavedArticles []ContentRecord
	SocialPosts   []PostOutcome
	Message       string
}
