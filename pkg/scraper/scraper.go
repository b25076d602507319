package scraper

import (
	"context"
	"fmt"
	"time"

	"tokscraper/pkg/browser"
	"tokscraper/pkg/cache"
	"tokscraper/pkg/config"
	"tokscraper/pkg/cookies"
	"tokscraper/pkg/errors"
	"tokscraper/pkg/logger"
	"tokscraper/pkg/metrics"
	"tokscraper/pkg/ratelimit"
	"tokscraper/pkg/storage"
	"tokscraper/pkg/tiktok"
	"tokscraper/pkg/ui"
)

// Scraper orchestrates acquisition end to end: pacing, the client call,
// cache fallback, row mapping, persistence and notifications.
type Scraper struct {
	client   TikTokClient
	browser  *browser.ExecutionContext
	cache    *cache.Store
	storage  *storage.Manager
	limiter  ratelimit.Limiter
	notifier *ui.Notifier
	metrics  *metrics.Server
	report   *Report
	config   *config.Config
	logger   logger.Logger
	tui      ui.TUI
}

// Result summarizes one scrape operation.
type Result struct {
	Kind      string
	Target    string
	File      string
	Collected int
	Written   int
	FromCache bool
	Duration  time.Duration
}

// New creates a scraper with its own execution context and storage manager.
func New(cfg *config.Config) (*Scraper, error) {
	manager, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}
	return NewWithStorage(cfg, manager)
}

// NewWithStorage creates a scraper writing through a shared storage manager.
// Batch workers use this so concurrent runs merge into one set of tables.
func NewWithStorage(cfg *config.Config, manager *storage.Manager) (*Scraper, error) {
	log := logger.GetLogger()
	ec := browser.New(cfg, log)

	s := &Scraper{
		client:   tiktok.NewClient(ec, cfg, log),
		browser:  ec,
		cache:    cache.New(),
		storage:  manager,
		limiter:  ratelimit.New(cfg.RateLimit.Strategy, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize),
		notifier: ui.NewNotifier(cfg.Notifications),
		report:   NewReport(),
		config:   cfg,
		logger:   log,
	}
	if cfg.Metrics.Addr != "" {
		s.metrics = metrics.NewServer(cfg.Metrics.Addr, log)
	}
	return s, nil
}

// NewWithClient wires a scraper around an existing client and storage
// manager. Tests use it to substitute a scripted client; no execution
// context is created and Start only brings up ancillary services.
func NewWithClient(cfg *config.Config, client TikTokClient, manager *storage.Manager) *Scraper {
	log := logger.GetLogger()

	s := &Scraper{
		client:   client,
		cache:    cache.New(),
		storage:  manager,
		limiter:  ratelimit.New(cfg.RateLimit.Strategy, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize),
		notifier: ui.NewNotifier(cfg.Notifications),
		report:   NewReport(),
		config:   cfg,
		logger:   log,
	}
	if cfg.Metrics.Addr != "" {
		s.metrics = metrics.NewServer(cfg.Metrics.Addr, log)
	}
	return s
}

// SetTUI attaches a live dashboard; operations report to it instead of the
// plain terminal printers.
func (s *Scraper) SetTUI(tui ui.TUI) {
	s.tui = tui
}

// Storage exposes the manager so callers can locate the written tables.
func (s *Scraper) Storage() *storage.Manager {
	return s.storage
}

// Start launches the execution context, warms it up on real content pages,
// injects any configured cookies and exports the session cookies back when
// auto-save is on. Startup failure is the one error class that aborts a run.
func (s *Scraper) Start(ctx context.Context) error {
	logger.LogComponentStart("scraper", map[string]interface{}{
		"output_dir": s.config.Output.BaseDirectory,
		"rate_limit": s.config.RateLimit.RequestsPerMinute,
	})

	if s.metrics != nil {
		s.metrics.Start()
	}
	if s.browser == nil {
		return nil
	}

	if err := s.browser.Start(ctx); err != nil {
		return fmt.Errorf("failed to establish execution context: %w", err)
	}

	if jar := s.loadCookieJar(); jar != nil {
		if err := s.browser.InjectCookies(ctx, jar.Cookies); err != nil {
			s.logger.WithError(err).Warn("Cookie injection failed, continuing logged out")
		} else {
			s.logger.InfoWithFields("Cookies injected", map[string]interface{}{
				"jar":     jar.Name,
				"cookies": len(jar.Cookies),
			})
		}
	}

	if err := s.browser.WarmUp(ctx); err != nil {
		if ctx.Err() != nil {
			return err
		}
		s.logger.WithError(err).Warn("Warm-up incomplete, acquisition will recover on demand")
	}

	s.exportCookies(ctx)
	return nil
}

// Close writes the run report when configured and tears down the execution
// context and metrics listener.
func (s *Scraper) Close() error {
	if s.config.Output.WriteReport && s.report.Len() > 0 {
		if err := s.report.Save(s.storage.Path(reportFileName)); err != nil {
			s.logger.WithError(err).Warn("Failed to write run report")
		}
	}
	if s.metrics != nil {
		s.metrics.Stop()
	}
	logger.LogComponentStop("scraper", "run finished")
	if s.browser != nil {
		return s.browser.Close()
	}
	return nil
}

// ScrapeUser fetches a user's posted videos and merges them into @user.csv.
func (s *Scraper) ScrapeUser(ctx context.Context, username string, count int) (*Result, error) {
	username = tiktok.NormalizeUsername(username)
	return s.run(ctx, operation{
		kind:   "user_videos",
		target: username,
		file:   storage.UserVideosFile(username),
		count:  count,
		mapper: VideoMapper{},
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.client.UserVideos(ctx, username, count)
		},
	})
}

// ScrapeUserInfo fetches a user's profile record into @user_user_info.csv.
func (s *Scraper) ScrapeUserInfo(ctx context.Context, username string) (*Result, error) {
	username = tiktok.NormalizeUsername(username)
	return s.run(ctx, operation{
		kind:       "user_detail",
		target:     username,
		file:       storage.UserInfoFile(username),
		mapper:     userInfoMapper,
		noFallback: true,
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.detail(s.client.UserDetail(ctx, username))
		},
	})
}

// ScrapeLiked fetches the videos a user has liked, where the profile makes
// them public.
func (s *Scraper) ScrapeLiked(ctx context.Context, username string, count int) (*Result, error) {
	username = tiktok.NormalizeUsername(username)
	return s.run(ctx, operation{
		kind:   "user_liked",
		target: username,
		file:   "liked_" + storage.SanitizeName(username) + ".csv",
		count:  count,
		mapper: VideoMapper{},
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.client.UserLiked(ctx, username, count)
		},
	})
}

// ScrapeUserPlaylists fetches the playlists a user has published.
func (s *Scraper) ScrapeUserPlaylists(ctx context.Context, username string, count int) (*Result, error) {
	username = tiktok.NormalizeUsername(username)
	return s.run(ctx, operation{
		kind:   "user_playlists",
		target: username,
		file:   "user_playlists_" + storage.SanitizeName(username) + ".csv",
		count:  count,
		mapper: playlistListMapper,
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.client.UserPlaylists(ctx, username, count)
		},
	})
}

// ScrapeHashtag fetches a hashtag's videos into tag_<tag>.csv. Hard blocks
// on the listing endpoint degrade to the search fallback inside the client.
func (s *Scraper) ScrapeHashtag(ctx context.Context, tag string, count int) (*Result, error) {
	tag = tiktok.NormalizeHashtag(tag)
	return s.run(ctx, operation{
		kind:   "hashtag_videos",
		target: tag,
		file:   storage.HashtagFile(tag),
		count:  count,
		mapper: VideoMapper{},
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.client.HashtagVideos(ctx, tag, count)
		},
	})
}

// ScrapeComments fetches a video's comment thread into comments_<id>.csv.
// The video may be given as a bare ID or a share URL.
func (s *Scraper) ScrapeComments(ctx context.Context, videoRef string, count int) (*Result, error) {
	videoID := tiktok.ExtractVideoID(videoRef)
	return s.run(ctx, operation{
		kind:   "video_comments",
		target: videoID,
		file:   storage.CommentsFile(videoID),
		count:  count,
		mapper: CommentMapper{AwemeID: videoID},
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.client.VideoComments(ctx, videoRef, count)
		},
	})
}

// ScrapeReplies fetches the replies under one comment into
// replies_<commentID>.csv.
func (s *Scraper) ScrapeReplies(ctx context.Context, videoRef, commentID string, count int) (*Result, error) {
	videoID := tiktok.ExtractVideoID(videoRef)
	return s.run(ctx, operation{
		kind:   "comment_replies",
		target: commentID,
		file:   storage.RepliesFile(commentID),
		count:  count,
		mapper: CommentMapper{AwemeID: videoID},
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.client.CommentReplies(ctx, videoRef, commentID, count)
		},
	})
}

// ScrapeRelated fetches the videos TikTok relates to the given one.
func (s *Scraper) ScrapeRelated(ctx context.Context, videoRef string, count int) (*Result, error) {
	videoID := tiktok.ExtractVideoID(videoRef)
	return s.run(ctx, operation{
		kind:   "related_videos",
		target: videoID,
		file:   storage.RelatedFile(videoID),
		count:  count,
		mapper: VideoMapper{},
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.client.RelatedVideos(ctx, videoRef, count)
		},
	})
}

// ScrapeTrending fetches the logged-out For You feed into foryou.csv.
func (s *Scraper) ScrapeTrending(ctx context.Context, count int) (*Result, error) {
	return s.run(ctx, operation{
		kind:   "trending",
		file:   storage.TrendingFile(),
		count:  count,
		mapper: VideoMapper{},
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.client.Trending(ctx, count)
		},
	})
}

// ScrapeSearch fetches video search results for a keyword.
func (s *Scraper) ScrapeSearch(ctx context.Context, keyword string, count int) (*Result, error) {
	return s.run(ctx, operation{
		kind:   "search_videos",
		target: keyword,
		file:   storage.SearchVideosFile(keyword),
		count:  count,
		mapper: VideoMapper{},
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.client.SearchVideos(ctx, keyword, count)
		},
	})
}

// ScrapeSearchUsers fetches user search results for a keyword.
func (s *Scraper) ScrapeSearchUsers(ctx context.Context, keyword string, count int) (*Result, error) {
	return s.run(ctx, operation{
		kind:   "search_users",
		target: keyword,
		file:   storage.SearchUsersFile(keyword),
		count:  count,
		mapper: searchUserMapper,
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.client.SearchUsers(ctx, keyword, count)
		},
	})
}

// ScrapeSearchGeneral fetches mixed search results for a keyword.
func (s *Scraper) ScrapeSearchGeneral(ctx context.Context, keyword string, count int) (*Result, error) {
	return s.run(ctx, operation{
		kind:   "search_general",
		target: keyword,
		file:   storage.SearchGeneralFile(keyword),
		count:  count,
		mapper: generalMapper,
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.client.SearchGeneral(ctx, keyword, count)
		},
	})
}

// ScrapeSound fetches the videos using a sound into music_<id>.csv.
func (s *Scraper) ScrapeSound(ctx context.Context, soundID string, count int) (*Result, error) {
	return s.run(ctx, operation{
		kind:   "sound_videos",
		target: soundID,
		file:   storage.SoundVideosFile(soundID),
		count:  count,
		mapper: VideoMapper{},
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.client.SoundVideos(ctx, soundID, count)
		},
	})
}

// ScrapeSoundInfo fetches a sound's metadata record.
func (s *Scraper) ScrapeSoundInfo(ctx context.Context, soundID string) (*Result, error) {
	return s.run(ctx, operation{
		kind:       "sound_detail",
		target:     soundID,
		file:       storage.SoundInfoFile(soundID),
		mapper:     soundInfoMapper,
		noFallback: true,
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.detail(s.client.SoundDetail(ctx, soundID))
		},
	})
}

// ScrapePlaylist fetches the videos in a playlist into playlist_<id>.csv.
func (s *Scraper) ScrapePlaylist(ctx context.Context, playlistID string, count int) (*Result, error) {
	return s.run(ctx, operation{
		kind:   "playlist_videos",
		target: playlistID,
		file:   storage.PlaylistVideosFile(playlistID),
		count:  count,
		mapper: VideoMapper{},
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.client.PlaylistVideos(ctx, playlistID, count)
		},
	})
}

// ScrapePlaylistInfo fetches a playlist's metadata record.
func (s *Scraper) ScrapePlaylistInfo(ctx context.Context, playlistID string) (*Result, error) {
	return s.run(ctx, operation{
		kind:       "playlist_detail",
		target:     playlistID,
		file:       storage.PlaylistInfoFile(playlistID),
		mapper:     playlistInfoMapper,
		noFallback: true,
		fetch: func(ctx context.Context) ([]tiktok.Item, error) {
			return s.detail(s.client.PlaylistDetail(ctx, playlistID))
		},
	})
}

// operation describes one scrape: where rows come from and where they land.
type operation struct {
	kind   string
	target string
	file   string
	count  int
	mapper RowMapper
	fetch  func(context.Context) ([]tiktok.Item, error)
	// noFallback skips the cached-result fallback; detail exports always
	// reflect the live response.
	noFallback bool
}

// run executes the shared pipeline: pace, fetch, cache, map, merge-write.
// Acquisition failures are absorbed into empty or partial results; only
// cancellation and persistence failures surface as errors.
func (s *Scraper) run(ctx context.Context, op operation) (*Result, error) {
	start := time.Now()
	s.announce(op)
	s.pace()

	items, err := op.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			s.report.Record(s.partial(op, start), err)
			return nil, err
		}
		if errors.TypeOf(err) == errors.ErrorTypeHardBlock {
			s.notifier.HardBlock(op.target)
		}
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"operation": op.kind,
			"target":    op.target,
		}).Warn("Acquisition failed, continuing with whatever was collected")
		items = nil
	}

	fromCache := false
	if s.config.Cache.Enabled {
		key := cache.Key(op.kind, op.target)
		if len(items) > 0 {
			s.cache.Put(key, items)
		} else if !op.noFallback {
			items, fromCache = s.cachedFallback(key, op)
		}
	}
	if len(items) == 0 {
		s.logger.WarnWithFields("No results", map[string]interface{}{
			"operation": op.kind,
			"target":    op.target,
		})
	}

	rows, columns := op.mapper.Rows(items)
	written, err := s.storage.MergeWrite(op.file, rows, columns, op.mapper.KeyField(rows))
	if err != nil {
		operationsTotal.WithLabelValues(op.kind, "error").Inc()
		s.report.Record(s.partial(op, start), err)
		s.fail(op, err)
		return nil, fmt.Errorf("failed to persist %s rows: %w", op.kind, err)
	}

	res := &Result{
		Kind:      op.kind,
		Target:    op.target,
		File:      op.file,
		Collected: len(items),
		Written:   written,
		FromCache: fromCache,
		Duration:  time.Since(start),
	}
	operationsTotal.WithLabelValues(op.kind, outcomeOf(res)).Inc()
	operationDuration.WithLabelValues(op.kind).Observe(res.Duration.Seconds())
	s.report.Record(res, nil)
	s.complete(res)
	return res, nil
}

func outcomeOf(res *Result) string {
	switch {
	case res.FromCache:
		return "cached"
	case res.Collected == 0:
		return "empty"
	default:
		return "success"
	}
}

// partial builds a result shell for failed operations so the run report
// still names what was attempted.
func (s *Scraper) partial(op operation, start time.Time) *Result {
	return &Result{
		Kind:     op.kind,
		Target:   op.target,
		File:     op.file,
		Duration: time.Since(start),
	}
}

// detail adapts a single-object fetch to the batch pipeline.
func (s *Scraper) detail(item tiktok.Item, err error) ([]tiktok.Item, error) {
	if err != nil {
		return nil, err
	}
	if len(item) == 0 {
		return nil, nil
	}
	return []tiktok.Item{item}, nil
}

// cachedFallback serves the last known good result when a refetch came back
// empty. Empty results never overwrite the cache, so a flaky session can
// still persist what an earlier call collected.
func (s *Scraper) cachedFallback(key string, op operation) ([]tiktok.Item, bool) {
	cached, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	items, ok := cached.([]tiktok.Item)
	if !ok || len(items) == 0 {
		return nil, false
	}
	if op.count > 0 && len(items) > op.count {
		items = items[:op.count]
	}

	cacheFallbacksTotal.Inc()
	s.logger.WarnWithFields("Refetch came back empty, persisting cached result", map[string]interface{}{
		"operation": op.kind,
		"target":    op.target,
		"items":     len(items),
	})
	return items, true
}

// pace blocks until the limiter admits another acquisition.
func (s *Scraper) pace() {
	if s.limiter.Allow() {
		return
	}
	s.logger.InfoWithFields("Rate limit reached, pacing", map[string]interface{}{
		"requests_per_minute": s.config.RateLimit.RequestsPerMinute,
	})
	if s.tui != nil {
		s.tui.LogWarning("Rate limit reached, pacing before the next call")
	}
	s.limiter.Wait()
}

func (s *Scraper) announce(op operation) {
	if s.tui != nil {
		s.tui.StartOperation(op.kind, op.target)
		return
	}
	if !ui.IsQuietMode() {
		ui.PrintInfo("Scraping", describeOperation(op.kind, op.target))
	}
}

func (s *Scraper) complete(res *Result) {
	s.notifier.Complete(res.Target, res.File, res.Written)
	if s.tui != nil {
		s.tui.CompleteOperation(res.Kind, res.Target, res.File, res.Written)
		return
	}
	if !ui.IsQuietMode() {
		ui.PrintSuccess("%s: %d rows (%d collected this run)", res.File, res.Written, res.Collected)
	}
}

func (s *Scraper) fail(op operation, err error) {
	s.notifier.Error(op.target, err)
	if s.tui != nil {
		s.tui.FailOperation(op.kind, op.target, err)
		return
	}
	ui.PrintError("%s %s failed: %v", op.kind, op.target, err)
}

func describeOperation(kind, target string) string {
	if target == "" {
		return kind
	}
	return fmt.Sprintf("%s %s", kind, target)
}

// loadCookieJar resolves cookies from the configured file or store. Nothing
// configured, or nothing stored, simply means a logged-out session.
func (s *Scraper) loadCookieJar() *cookies.Jar {
	cfg := s.config.Cookies
	if cfg.File != "" {
		jar, err := cookies.LoadFile(cfg.File)
		if err != nil {
			s.logger.WithError(err).WithField("file", cfg.File).Warn("Could not load cookie file")
		} else {
			return jar
		}
	}
	if cfg.Store != "" && cfg.Store != "none" {
		mgr, err := cookies.NewManagerFor(cfg.Store)
		if err != nil {
			s.logger.WithError(err).Warn("Cookie store unavailable")
			return nil
		}
		jar, err := mgr.RetrieveDefault()
		if err != nil {
			s.logger.Debug("No stored cookies found")
			return nil
		}
		return jar
	}
	return nil
}

// exportCookies saves the warmed-up session's cookies back to the
// configured destination so later runs reuse the identity.
func (s *Scraper) exportCookies(ctx context.Context) {
	cfg := s.config.Cookies
	if !cfg.AutoSave {
		return
	}

	dump, err := s.browser.Cookies(ctx)
	if err != nil || len(dump) == 0 {
		if err != nil {
			s.logger.WithError(err).Warn("Cookie export failed")
		}
		return
	}
	jar := &cookies.Jar{Name: "default", Cookies: dump, LastModified: time.Now()}

	switch {
	case cfg.Store != "" && cfg.Store != "none":
		mgr, err := cookies.NewManagerFor(cfg.Store)
		if err == nil {
			err = mgr.Store(jar)
		}
		if err != nil {
			s.logger.WithError(err).Warn("Could not save cookies to store")
			return
		}
		s.logger.InfoWithFields("Session cookies saved", map[string]interface{}{
			"store":   cfg.Store,
			"cookies": len(jar.Cookies),
		})
	case cfg.File != "":
		if err := cookies.SaveFile(cfg.File, jar); err != nil {
			s.logger.WithError(err).Warn("Could not save cookie file")
			return
		}
		s.logger.InfoWithFields("Session cookies saved", map[string]interface{}{
			"file":    cfg.File,
			"cookies": len(jar.Cookies),
		})
	}
}
