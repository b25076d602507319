package browser

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

//go:embed stealth.js
var stealthScript string

// stealthTasks registers the evasion script to run before any page
// script. TikTok's bootstrap probes navigator properties immediately,
// so injecting after navigation would be too late.
func stealthTasks() chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to inject stealth script: %w", err)
			}
			return nil
		}),
	}
}
