package models

// ScriptResult is the payload of a completed job.
type ScriptResult struct {
	Title   string       `json:"title" dynamodbav:"title"`
	Script  string       `json:"script" dynamodbav:"script"`
	Sources []SourceItem `json:"sources" dynamodbav:"sources"`
}

// SourceItem is one piece of trending content a script was written from.
// Created is kept as the upstream string ("2006-01-02 15:04:05" for Reddit,
// RFC 3339 for NewsAPI) so news items sort by recency lexically.
type SourceItem struct {
	Source   string `json:"source" dynamodbav:"source"`
	Title    string `json:"title" dynamodbav:"title"`
	Content  string `json:"content,omitempty" dynamodbav:"content,omitempty"`
	URL      string `json:"url,omitempty" dynamodbav:"url,omitempty"`
	Created  string `json:"created" dynamodbav:"created"`
	Score    int    `json:"score,omitempty" dynamodbav:"score,omitempty"`
	Comments int    `json:"comments,omitempty" dynamodbav:"comments,omitempty"`
	Tone     string `json:"tone,omitempty" dynamodbav:"tone,omitempty"`
}

// Engagement is the ranking key for Reddit posts.
func (s SourceItem) Engagement() int {
	return s.Score + s.Comments
}

// ScriptSegment is one block of a rendered script: the intro or a
// "[SEGMENT n: title]" section.
type ScriptSegment struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Promo is the social media caption and hashtag set for a finished script.
type Promo struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

// PromoRequest carries optional notes about the footage the script will be
// cut against.
type PromoRequest struct {
	ImageDescriptions string `json:"image_descriptions,omitempty"`
}
