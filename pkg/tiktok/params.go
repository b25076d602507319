package tiktok

import (
	"context"
	"math/rand"
	"strconv"
	"strings"

	"tokscraper/pkg/browser"
	"tokscraper/pkg/config"
	"tokscraper/pkg/logger"
)

// Defaults used when the page probe fails or a navigator field is
// empty. They describe a common desktop profile.
const (
	defaultPlatform = "MacIntel"
	defaultLanguage = "en"
	defaultTimezone = "America/New_York"
	defaultScreenW  = 1920
	defaultScreenH  = 1080
)

// probeScript reads the environment fields the query string mirrors.
// Every read is guarded; a partial result is still usable.
const probeScript = `(() => {
	let tz = "";
	try { tz = Intl.DateTimeFormat().resolvedOptions().timeZone || ""; } catch (e) {}
	return {
		userAgent: (navigator.userAgent || ""),
		language: (navigator.language || ""),
		platform: (navigator.platform || ""),
		tzName: tz,
		screenWidth: (window.screen && window.screen.width) || 0,
		screenHeight: (window.screen && window.screen.height) || 0,
	};
})()`

type pageProbe struct {
	UserAgent    string `json:"userAgent"`
	Language     string `json:"language"`
	Platform     string `json:"platform"`
	TZName       string `json:"tzName"`
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
}

// SessionParams derives the query parameters every endpoint call
// carries. The values come from the live page so they agree with what
// the browser would send about itself; they are built once and reused
// until Invalidate drops them.
//
// Not safe for concurrent use. Each execution context owns one.
type SessionParams struct {
	runner browser.Runner
	cfg    *config.Config
	log    logger.Logger

	values map[string]string
}

// NewSessionParams creates a parameter builder bound to a tab.
func NewSessionParams(runner browser.Runner, cfg *config.Config, log logger.Logger) *SessionParams {
	return &SessionParams{runner: runner, cfg: cfg, log: log}
}

// Ensure returns the session parameter set, building it on first use.
func (sp *SessionParams) Ensure(ctx context.Context) (map[string]string, error) {
	if sp.values != nil {
		return sp.values, nil
	}

	probe, err := sp.probe(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		sp.log.WarnWithFields("page probe failed, using default session profile", map[string]interface{}{
			"error": err.Error(),
		})
		probe = pageProbe{}
	}
	sp.values = sp.build(probe)
	return sp.values, nil
}

// Invalidate drops the cached parameters so the next call rebuilds
// them, with a fresh device id and history length.
func (sp *SessionParams) Invalidate() {
	sp.values = nil
}

// ParamsFor merges the session set with the endpoint's origin hint and
// the per-call parameters. Per-call values win.
func (sp *SessionParams) ParamsFor(ctx context.Context, ep Endpoint, overrides map[string]string) (map[string]string, error) {
	base, err := sp.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(base)+len(overrides)+1)
	for k, v := range base {
		out[k] = v
	}
	if ep.FromPage != "" {
		out["from_page"] = ep.FromPage
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out, nil
}

func (sp *SessionParams) probe(ctx context.Context) (pageProbe, error) {
	var p pageProbe
	if err := sp.runner.Evaluate(ctx, probeScript, &p); err != nil {
		return pageProbe{}, err
	}
	return p, nil
}

// build assembles the full parameter set from the probe, filling gaps
// with the default profile.
func (sp *SessionParams) build(p pageProbe) map[string]string {
	platform := p.Platform
	if platform == "" {
		platform = defaultPlatform
	}
	lang := sp.cfg.TikTok.Language
	if lang == "" {
		lang = p.Language
	}
	if lang == "" {
		lang = defaultLanguage
	}
	short := strings.SplitN(lang, "-", 2)[0]
	tz := p.TZName
	if tz == "" {
		tz = defaultTimezone
	}
	ua := p.UserAgent
	if ua == "" {
		ua = sp.cfg.TikTok.UserAgent
	}
	width, height := p.ScreenWidth, p.ScreenHeight
	if width <= 0 {
		width = defaultScreenW
	}
	if height <= 0 {
		height = defaultScreenH
	}

	// 19-digit device id in the range real web clients generate
	deviceID := 1_000_000_000_000_000_000 + rand.Int63n(9_000_000_000_000_000_000)

	return map[string]string{
		"aid":              "1988",
		"app_language":     short,
		"app_name":         "tiktok_web",
		"browser_language": lang,
		"browser_name":     "Mozilla",
		"browser_online":   "true",
		"browser_platform": platform,
		"browser_version":  ua,
		"channel":          "tiktok_web",
		"cookie_enabled":   "true",
		"device_id":        strconv.FormatInt(deviceID, 10),
		"device_platform":  "web_pc",
		"focus_state":      "true",
		"from_page":        "user",
		"history_len":      strconv.Itoa(1 + rand.Intn(10)),
		"is_fullscreen":    "false",
		"is_page_visible":  "true",
		"os":               osFromPlatform(platform),
		"priority_region":  "",
		"referer":          "",
		"region":           sp.cfg.TikTok.Region,
		"screen_height":    strconv.Itoa(height),
		"screen_width":     strconv.Itoa(width),
		"tz_name":          tz,
		"webcast_language": short,
		"language":         short,
	}
}

// osFromPlatform maps a navigator.platform value onto the short os
// names the endpoints expect.
func osFromPlatform(platform string) string {
	p := strings.ToLower(platform)
	switch {
	case strings.Contains(p, "win"):
		return "windows"
	case strings.Contains(p, "linux"):
		return "linux"
	default:
		return "mac"
	}
}
