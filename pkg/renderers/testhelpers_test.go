package renderers

import (
	"github.com/samvad-hq/samvad-market-pulse/internal/domain"
	"github.com/samvad-hq/samvad-market-pulse/internal/logger"
	"github.com/samvad-hq/samvad-market-pulse/internal/view"
)

func sampleFrame() Frame {
	return Frame{
		SessionID: "session-1",
		Sequence:  7,
		Trigger:   "load_more",
		View: view.ViewModel{
			LoadState:     "idle",
			Sentiment:     domain.SentimentSummary{Positive: 60, Neutral: 25, Negative: 15, Overall: domain.SentimentPositive},
			Trending:      []domain.TrendingTopic{{Name: "rates", Sentiment: domain.SentimentNeutral}},
			Articles:      []view.Article{{ID: "a1", Title: "Fed holds", SourceName: "Reuters", Sentiment: "neutral", Impact: "medium"}},
			HasMore:       true,
			ViewMode:      view.ModeGrid,
			Query:         domain.Query{Window: domain.Window24h},
			TotalArticles: 1,
		},
	}
}

var nopLog = &logger.NopLogger{}
