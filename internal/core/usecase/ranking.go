package usecase

import (
	"sort"

	"github.com/venn-app/venn/internal/core/model"
)

// relevanceFactor is the weight of the viewer's tag affinity against raw
// popularity in the ranking score.
const relevanceFactor = 0.5

// Ranker computes a display order for a set of events given the viewing
// user's tag affinities and each event's view counter. It is a pure
// read-side transform.
type Ranker struct{}

// NewRanker creates a new Ranker.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank returns a copy of the candidate events sorted by descending
// score. The score blends a normalized view count with a normalized tag
// match count; ties keep the original order. With no viewer or no tag
// overlap the order degrades to pure view-count descending.
func (r *Ranker) Rank(viewer *model.User, events []model.Event) []model.Event {
	ranked := make([]model.Event, len(events))
	copy(ranked, events)
	if len(ranked) == 0 {
		return ranked
	}

	var viewerTags []string
	if viewer != nil {
		viewerTags = viewer.Tags
	}

	tagMatches := make([]int, len(ranked))
	maxTagMatches := 0
	var maxViews int64 = 1
	for i, event := range ranked {
		tagMatches[i] = intersectionSize(event.Tags, viewerTags)
		if tagMatches[i] > maxTagMatches {
			maxTagMatches = tagMatches[i]
		}
		if event.NViews > maxViews {
			maxViews = event.NViews
		}
	}

	scores := make([]float64, len(ranked))
	for i, event := range ranked {
		tagScore := 0.0
		if maxTagMatches > 0 {
			tagScore = float64(tagMatches[i]) / float64(maxTagMatches)
		}
		viewScore := float64(event.NViews) / float64(maxViews)
		scores[i] = (1-relevanceFactor)*viewScore + relevanceFactor*tagScore
	}

	indices := make([]int, len(ranked))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return scores[indices[a]] > scores[indices[b]]
	})

	out := make([]model.Event, len(ranked))
	for i, idx := range indices {
		out[i] = ranked[idx]
	}
	return out
}
