// Package feed derives view-specific orderings of a post collection.
//
// Every function is pure over the given snapshot, the input is never mutated.
package feed

import (
	"sort"
	"strings"
	"time"

	"github.com/kiosk-news/kiosk/internal/entities"
)

// Pseudo-categories understood only by the feed, posts never carry them.
const (
	// AllNewsTab returns the collection unchanged.
	AllNewsTab = "All News"
	// TrendingTab orders the collection by like count.
	TrendingTab = "Trending"
)

// NewsTodayLimit is the size of the "News Today" rail.
const NewsTodayLimit = 5

// Score weights for the "News Today" ranking.
const (
	likeWeight    = 5
	recencyWeight = 3
	recencyCutoff = 50 // hours
)

// Filter applies a category tab to posts.
// AllNewsTab is the identity, TrendingTab sorts descending by like count,
// any other label keeps only posts whose category equals it exactly.
func Filter(posts []*entities.Post, category string) []*entities.Post {
	switch category {
	case AllNewsTab:
		out := make([]*entities.Post, len(posts))
		copy(out, posts)
		return out
	case TrendingTab:
		out := make([]*entities.Post, len(posts))
		copy(out, posts)
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].LikeCount > out[j].LikeCount
		})
		return out
	default:
		out := make([]*entities.Post, 0, len(posts))
		for _, p := range posts {
			if string(p.Category) == category {
				out = append(out, p)
			}
		}
		return out
	}
}

// Search keeps posts whose title, content or category contains query,
// case-insensitively.
func Search(posts []*entities.Post, query string) []*entities.Post {
	q := strings.ToLower(query)

	out := make([]*entities.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Content), q) ||
			strings.Contains(strings.ToLower(string(p.Category)), q) {
			out = append(out, p)
		}
	}

	return out
}

// Select derives the feed for a category tab and a search query. A non-empty
// query overrides the category entirely, the two are never composed.
func Select(posts []*entities.Post, category, query string) []*entities.Post {
	if query != "" {
		return Search(posts, query)
	}

	return Filter(posts, category)
}

// Score ranks a post by popularity and recency:
//
//	likeCount×5 + max(50−ageHours, 0)×3
//
// with fractional age hours. Posts older than the cutoff keep their like term,
// the score is never negative.
func Score(p *entities.Post, now time.Time) float64 {
	recency := recencyCutoff - now.Sub(p.CreatedAt).Hours()
	if recency < 0 {
		recency = 0
	}

	return float64(p.LikeCount*likeWeight) + recency*recencyWeight
}

// NewsToday returns the top n posts by Score, ties broken by input order.
// It is recomputed from the snapshot on every call.
func NewsToday(posts []*entities.Post, now time.Time, n int) []*entities.Post {
	out := make([]*entities.Post, len(posts))
	copy(out, posts)

	sort.SliceStable(out, func(i, j int) bool {
		return Score(out[i], now) > Score(out[j], now)
	})

	if len(out) > n {
		out = out[:n]
	}

	return out
}
