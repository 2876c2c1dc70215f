package model

// PublishResult records the outcome of a WordPress post creation
type PublishResult struct {
	PostID      int    `json:"post_id"`
	URL         string `json:"url"`
	Status      string `json:"status"`
	Slug        string `json:"slug"`
	PublishedAt string `json:"published_at"`
}
