// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package youtube

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/keyscope/internal/keywords"
)

// WatchURLPrefix prefixes a video ID to form its public URL.
const WatchURLPrefix = "https://www.youtube.com/watch?v="

// SearchRequest is a video search with optional post-filters.
type SearchRequest struct {
	Query          string     `json:"query" validate:"required,max=200"`
	Order          string     `json:"order" validate:"omitempty,oneof=relevance date rating title viewCount videoCount"`
	MaxResults     int        `json:"maxResults" validate:"omitempty,min=1,max=50"`
	Region         string     `json:"regionCode" validate:"omitempty,len=2,alpha"`
	VideoDuration  string     `json:"videoDuration" validate:"omitempty,oneof=any short medium long"`
	PublishedAfter *time.Time `json:"publishedAfter,omitempty"`
	// PublishedBefore is exclusive.
	PublishedBefore *time.Time `json:"publishedBefore,omitempty"`
	PageToken       string     `json:"pageToken,omitempty"`
	MinViews        int64      `json:"minViews" validate:"gte=0"`
	MaxViews        int64      `json:"maxViews" validate:"gte=0"`
}

// SearchResult is one page of mapped documents.
type SearchResult struct {
	Results       []keywords.Document `json:"results"`
	NextPageToken string              `json:"nextPageToken,omitempty"`
	TotalResults  int64               `json:"totalResults"`
}

type searchResponse struct {
	NextPageToken string `json:"nextPageToken"`
	PageInfo      struct {
		TotalResults int64 `json:"totalResults"`
	} `json:"pageInfo"`
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet snippet `json:"snippet"`
	} `json:"items"`
}

type snippet struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelID    string `json:"channelId"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	Thumbnails   map[string]struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

// Counts arrive as decimal strings.
type videosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type channelsResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type videoStats struct {
	views, likes, comments int64
	duration               string
}

// Search runs a search and enriches each hit with video and channel
// statistics. The statistics lookups run concurrently. Results keep the
// search order; the view filters drop documents outside [MinViews, MaxViews]
// where a bound of zero is unset.
func (c *Client) Search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("query is required")
	}

	var sr searchResponse
	if err := c.Call(ctx, "search", c.searchParams(req), &sr); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	result := &SearchResult{
		Results:       []keywords.Document{},
		NextPageToken: sr.NextPageToken,
		TotalResults:  sr.PageInfo.TotalResults,
	}
	if len(sr.Items) == 0 {
		return result, nil
	}

	videoIDs := make([]string, 0, len(sr.Items))
	channelIDs := make([]string, 0, len(sr.Items))
	seenChannels := make(map[string]struct{})
	for _, item := range sr.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videoIDs = append(videoIDs, item.ID.VideoID)
		if ch := item.Snippet.ChannelID; ch != "" {
			if _, ok := seenChannels[ch]; !ok {
				seenChannels[ch] = struct{}{}
				channelIDs = append(channelIDs, ch)
			}
		}
	}

	var (
		stats       map[string]videoStats
		subscribers map[string]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = c.videoStatistics(gctx, videoIDs)
		return err
	})
	g.Go(func() error {
		var err error
		subscribers, err = c.channelSubscribers(gctx, channelIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, item := range sr.Items {
		id := item.ID.VideoID
		if id == "" {
			continue
		}
		st := stats[id]
		doc := keywords.Document{
			ID:              id,
			Title:           item.Snippet.Title,
			Description:     item.Snippet.Description,
			ChannelID:       item.Snippet.ChannelID,
			ChannelTitle:    item.Snippet.ChannelTitle,
			PublishedAt:     datePart(item.Snippet.PublishedAt),
			ThumbnailURL:    thumbnail(item.Snippet),
			ViewCount:       st.views,
			LikeCount:       st.likes,
			CommentCount:    st.comments,
			Duration:        st.duration,
			SubscriberCount: subscribers[item.Snippet.ChannelID],
			URL:             WatchURLPrefix + id,
		}
		if req.MinViews > 0 && doc.ViewCount < req.MinViews {
			continue
		}
		if req.MaxViews > 0 && doc.ViewCount > req.MaxViews {
			continue
		}
		result.Results = append(result.Results, doc)
	}
	return result, nil
}

func (c *Client) searchParams(req *SearchRequest) url.Values {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", strings.TrimSpace(req.Query))
	params.Set("type", "video")

	order := req.Order
	if order == "" {
		order = "relevance"
	}
	params.Set("order", order)

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = c.cfg.MaxResults
	}
	params.Set("maxResults", strconv.Itoa(maxResults))

	region := strings.ToUpper(req.Region)
	if region == "" {
		region = c.cfg.Region
	}
	params.Set("regionCode", region)

	if req.VideoDuration != "" && req.VideoDuration != "any" {
		params.Set("videoDuration", req.VideoDuration)
	}
	if req.PublishedAfter != nil {
		params.Set("publishedAfter", req.PublishedAfter.UTC().Format(time.RFC3339))
	}
	if req.PublishedBefore != nil {
		params.Set("publishedBefore", req.PublishedBefore.UTC().Format(time.RFC3339))
	}
	if req.PageToken != "" {
		params.Set("pageToken", req.PageToken)
	}
	return params
}

func (c *Client) videoStatistics(ctx context.Context, ids []string) (map[string]videoStats, error) {
	out := make(map[string]videoStats, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	params := url.Values{}
	params.Set("part", "statistics,contentDetails")
	params.Set("id", strings.Join(ids, ","))

	var vr videosResponse
	if err := c.Call(ctx, "videos", params, &vr); err != nil {
		return nil, fmt.Errorf("video statistics: %w", err)
	}
	for _, item := range vr.Items {
		out[item.ID] = videoStats{
			views:    parseCount(item.Statistics.ViewCount),
			likes:    parseCount(item.Statistics.LikeCount),
			comments: parseCount(item.Statistics.CommentCount),
			duration: item.ContentDetails.Duration,
		}
	}
	return out, nil
}

func (c *Client) channelSubscribers(ctx context.Context, ids []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	params := url.Values{}
	params.Set("part", "statistics")
	params.Set("id", strings.Join(ids, ","))

	var cr channelsResponse
	if err := c.Call(ctx, "channels", params, &cr); err != nil {
		return nil, fmt.Errorf("channel statistics: %w", err)
	}
	for _, item := range cr.Items {
		out[item.ID] = parseCount(item.Statistics.SubscriberCount)
	}
	return out, nil
}

// parseCount treats hidden or malformed counts as zero.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func datePart(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 {
		return ts[:i]
	}
	return ts
}

func thumbnail(s snippet) string {
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := s.Thumbnails[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}
