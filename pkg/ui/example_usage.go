// Package ui provides terminal UI components for the TikTok scraper
// This file demonstrates example usage of the UI components
package ui

/*
Example usage of the UI components:

// Terminal colors and output
ui.PrintLogo()                                   // Print ASCII logo
ui.PrintInfo("Scraping", "user_videos somecreator") // Cyan label, yellow value
ui.PrintSuccess("@somecreator.csv: %d rows", 50) // Green success message
ui.PrintError("Scrape failed: %v", err)          // Red error message
ui.PrintWarning("Rate limit reached, pacing")    // Yellow warning message
ui.PrintHighlight("[BATCH]")                     // Magenta highlight message

// Quiet mode for scripting: suppress everything but errors
ui.SetQuietMode(true)

// Run totals
tracker := ui.NewStatusTracker()
tracker.RecordSuccess(120)                       // Operation wrote 120 rows
tracker.RecordFailure()
tracker.PrintSummary()

// Batch progress line
display := ui.NewProgressDisplay(len(jobs), false)
display.StartJob("user_videos somecreator")
display.CompleteJob("user_videos somecreator", 120)
display.Complete()

// Notifications, gated by config preferences
notifier := ui.NewNotifier(cfg.Notifications)
notifier.Complete("somecreator", "@somecreator.csv", 120)
notifier.Error("somecreator", err)
notifier.HardBlock("cats")

// Direct color usage
fmt.Printf("%s: %s\n", ui.Cyan("Target"), ui.Yellow("somecreator"))
fmt.Println(ui.Green("✓ Merged"))
fmt.Println(ui.Red("✗ Blocked"))
*/
