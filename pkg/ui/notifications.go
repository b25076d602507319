package ui

import (
	"fmt"
	"os/exec"
	"runtime"

	"tokscraper/pkg/config"
)

// NotificationSender interface for platform-specific notification implementations
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	cmd := exec.Command("notify-send", title, message)
	return cmd.Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`, message, title)
	cmd := exec.Command("osascript", "-e", script)
	return cmd.Run()
}

// WindowsNotificationSender sends notifications on Windows using PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
		$xml = @"
<toast>
	<visual>
		<binding template="ToastText02">
			<text id="1">%s</text>
			<text id="2">%s</text>
		</binding>
	</visual>
</toast>
"@
		$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
		$doc.LoadXml($xml)
		$toast = [Windows.UI.Notifications.ToastNotification]::new($doc)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("TikTok Scraper").Show($toast)
	`, title, message)

	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	return cmd.Run()
}

// Notifier reports scrape milestones according to the configured
// preferences: which events fire, and whether they print to the terminal
// or raise a desktop notification.
type Notifier struct {
	cfg    config.NotificationConfig
	sender NotificationSender
}

// NewNotifier creates a notifier for the current platform. The desktop
// sender is only wired up when the notification type asks for it.
func NewNotifier(cfg config.NotificationConfig) *Notifier {
	n := &Notifier{cfg: cfg}
	if cfg.NotificationType != "desktop" {
		return n
	}

	switch runtime.GOOS {
	case "linux":
		n.sender = &LinuxNotificationSender{}
	case "darwin":
		n.sender = &MacOSNotificationSender{}
	case "windows":
		n.sender = &WindowsNotificationSender{}
	}
	return n
}

// Complete announces a finished operation when completion events are on.
func (n *Notifier) Complete(target, file string, written int) {
	if !n.enabled() || !n.cfg.OnComplete {
		return
	}
	n.send("Scrape complete", fmt.Sprintf("%s: %d rows in %s", displayTarget(target), written, file))
}

// Error announces a failed operation when error events are on.
func (n *Notifier) Error(target string, err error) {
	if !n.enabled() || !n.cfg.OnError {
		return
	}
	n.sendError("Scrape failed", fmt.Sprintf("%s: %v", displayTarget(target), err))
}

// HardBlock announces that TikTok refused an endpoint outright. These
// fire even mid-run so the operator can rotate the session.
func (n *Notifier) HardBlock(target string) {
	if !n.enabled() || !n.cfg.OnHardBlock {
		return
	}
	n.sendError("Endpoint blocked", fmt.Sprintf("%s: listing refused, session may need fresh cookies", displayTarget(target)))
}

// SendNotification sends an arbitrary notification, honoring the
// configured type but no per-event gates.
func (n *Notifier) SendNotification(title, message string) {
	if !n.enabled() {
		return
	}
	n.send(title, message)
}

func (n *Notifier) enabled() bool {
	return n.cfg.Enabled && n.cfg.NotificationType != "none"
}

func (n *Notifier) send(title, message string) {
	if !quietMode {
		fmt.Printf("\n%s: %s\n", Cyan(title), Yellow(message))
	}
	if n.sender != nil {
		// Desktop notifications are best effort
		_ = n.sender.Send(title, message)
	}
}

func (n *Notifier) sendError(title, message string) {
	fmt.Printf("\n%s: %s\n", Red(title), Red(message))
	if n.sender != nil {
		_ = n.sender.Send(title, message)
	}
}

func displayTarget(target string) string {
	if target == "" {
		return "feed"
	}
	return target
}
