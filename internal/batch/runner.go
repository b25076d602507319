package batch

import (
	"context"
	"fmt"

	"tokscraper/pkg/scraper"
)

// ScraperRunner dispatches jobs onto a scraper facade. One runner wraps one
// scraper, and with it one browser execution context.
type ScraperRunner struct {
	scraper      *scraper.Scraper
	defaultCount int
}

// NewScraperRunner wraps an already started scraper.
func NewScraperRunner(s *scraper.Scraper, defaultCount int) *ScraperRunner {
	return &ScraperRunner{scraper: s, defaultCount: defaultCount}
}

// Run executes the job and reports the table it merged into.
func (r *ScraperRunner) Run(ctx context.Context, job Job) (string, int, error) {
	res, err := r.dispatch(ctx, job)
	if err != nil {
		return "", 0, err
	}
	return res.File, res.Written, nil
}

// Close shuts the wrapped scraper down.
func (r *ScraperRunner) Close() error {
	return r.scraper.Close()
}

func (r *ScraperRunner) dispatch(ctx context.Context, job Job) (*scraper.Result, error) {
	count := job.Count
	if count <= 0 {
		count = r.defaultCount
	}

	switch job.Kind {
	case KindUserVideos:
		return r.scraper.ScrapeUser(ctx, job.Target, count)
	case KindUserInfo:
		return r.scraper.ScrapeUserInfo(ctx, job.Target)
	case KindUserLiked:
		return r.scraper.ScrapeLiked(ctx, job.Target, count)
	case KindUserPlaylists:
		return r.scraper.ScrapeUserPlaylists(ctx, job.Target, count)
	case KindHashtagVideos:
		return r.scraper.ScrapeHashtag(ctx, job.Target, count)
	case KindVideoComments:
		return r.scraper.ScrapeComments(ctx, job.Target, count)
	case KindCommentReplies:
		// Batch jobs address replies by comment ID alone; rows keep the
		// aweme_id each reply carries.
		return r.scraper.ScrapeReplies(ctx, "", job.Target, count)
	case KindRelatedVideos:
		return r.scraper.ScrapeRelated(ctx, job.Target, count)
	case KindTrending:
		return r.scraper.ScrapeTrending(ctx, count)
	case KindSearchVideos:
		return r.scraper.ScrapeSearch(ctx, job.Target, count)
	case KindSearchUsers:
		return r.scraper.ScrapeSearchUsers(ctx, job.Target, count)
	case KindSearchGeneral:
		return r.scraper.ScrapeSearchGeneral(ctx, job.Target, count)
	case KindSoundVideos:
		return r.scraper.ScrapeSound(ctx, job.Target, count)
	case KindSoundInfo:
		return r.scraper.ScrapeSoundInfo(ctx, job.Target)
	case KindPlaylistVideos:
		return r.scraper.ScrapePlaylist(ctx, job.Target, count)
	case KindPlaylistInfo:
		return r.scraper.ScrapePlaylistInfo(ctx, job.Target)
	default:
		return nil, fmt.Errorf("unknown job kind %q", job.Kind)
	}
}
