// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package keywords

// Document is one retrieved video. It is read-only for the scoring pass.
type Document struct {
	ID              string `json:"id" validate:"required"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ChannelID       string `json:"channelId"`
	ChannelTitle    string `json:"channelTitle,omitempty"`
	PublishedAt     string `json:"publishedAt"`
	ThumbnailURL    string `json:"thumbnailUrl,omitempty"`
	ViewCount       int64  `json:"viewCount" validate:"gte=0"`
	LikeCount       int64  `json:"likeCount" validate:"gte=0"`
	CommentCount    int64  `json:"commentCount" validate:"gte=0"`
	Duration        string `json:"duration,omitempty"`
	SubscriberCount int64  `json:"subscriberCount" validate:"gte=0"`
	URL             string `json:"url,omitempty"`
}

// Text returns the title and description joined by a space.
func (d *Document) Text() string {
	if d.Description == "" {
		return d.Title
	}
	return d.Title + " " + d.Description
}

// Context is a short excerpt of a document a candidate term appeared in.
type Context struct {
	Text        string `json:"text"`
	PublishedAt string `json:"timestamp"`
	Views       int64  `json:"views"`
}

// Classification is the category assigned to a corpus.
type Classification struct {
	Category   string             `json:"category"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
}

// Recommendation is one ranked keyword. TrendScore, Diversity, Seasonal and
// Semantic hold their weighted contribution to RelevanceScore; Sentiment is
// the raw running average.
type Recommendation struct {
	Keyword           string    `json:"keyword"`
	Frequency         int       `json:"frequency"`
	AvgWeight         float64   `json:"avgWeight"`
	RelevanceScore    float64   `json:"relevanceScore"`
	TrendScore        float64   `json:"trendScore"`
	Sentiment         float64   `json:"sentiment"`
	Diversity         float64   `json:"diversity"`
	Seasonal          float64   `json:"seasonal"`
	Semantic          float64   `json:"semantic"`
	TFIDF             float64   `json:"tfidf"`
	Category          string    `json:"category"`
	Contexts          []Context `json:"contexts"`
	PersonalizedBonus float64   `json:"personalizedBonus,omitempty"`
}

// Result is the output of one scoring pass.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	CategoryInfo    *Classification  `json:"categoryInfo"`
	TotalAnalyzed   int              `json:"totalAnalyzed"`
}

// candidate accumulates statistics for one term while the batch is scanned.
type candidate struct {
	term         string
	frequency    int
	totalWeight  float64
	docs         map[string]struct{}
	avgSentiment float64
	contexts     []Context
}

func (c *candidate) observe(docID string, weight, sentiment float64, ctx Context, maxContexts int) {
	c.frequency++
	c.totalWeight += weight
	c.docs[docID] = struct{}{}
	c.avgSentiment += (sentiment - c.avgSentiment) / float64(c.frequency)
	if len(c.contexts) < maxContexts {
		c.contexts = append(c.contexts, ctx)
	}
}

func (c *candidate) avgWeight() float64 {
	if c.frequency == 0 {
		return 0
	}
	return c.totalWeight / float64(c.frequency)
}
