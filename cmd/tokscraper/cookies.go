package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tokscraper/pkg/config"
	"tokscraper/pkg/cookies"
	"tokscraper/pkg/ui"
)

var (
	cookieStoreKind string
	askPassphrase   bool
)

// cookiesCmd represents the cookies command
var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Manage cookie jars for logged-in acquisition",
	Long: `Manage the cookie jars tokscraper injects before acquisition.

A jar usually starts life as a JSON export from a browser extension while
logged in to TikTok. Import it once into a store, and every later run
injects it automatically. Store backends:

  file       plain JSON files in the config directory
  encrypted  AES-GCM encrypted file, key derived from a passphrase
  keyring    the operating system keychain

Without a configured store, runs read the export file named by --cookies
or the cookies.file config key directly.`,
}

var cookiesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a browser cookie export into the configured store",
	Example: `  tokscraper cookies import ~/Downloads/tiktok-cookies.json --store file
  tokscraper cookies import export.json --store encrypted --ask-passphrase`,
	Args: cobra.ExactArgs(1),
	Run:  runCookiesImport,
}

var cookiesExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the stored jar back out as a cookie file",
	Args:  cobra.ExactArgs(1),
	Run:   runCookiesExport,
}

var cookiesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List stored jars with their values masked",
	Run:   runCookiesShow,
}

var cookiesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a jar from every store backend",
	Args:  cobra.ExactArgs(1),
	Run:   runCookiesDelete,
}

var cookiesGuideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show how to export cookies from a browser",
	Run: func(cmd *cobra.Command, args []string) {
		cookies.ShowCookieExportGuide()
	},
}

func init() {
	rootCmd.AddCommand(cookiesCmd)
	cookiesCmd.AddCommand(cookiesImportCmd)
	cookiesCmd.AddCommand(cookiesExportCmd)
	cookiesCmd.AddCommand(cookiesShowCmd)
	cookiesCmd.AddCommand(cookiesDeleteCmd)
	cookiesCmd.AddCommand(cookiesGuideCmd)

	cookiesCmd.PersistentFlags().StringVar(&cookieStoreKind, "store", "", "store backend: file, encrypted or keyring (default from config)")
	cookiesCmd.PersistentFlags().BoolVar(&askPassphrase, "ask-passphrase", false, "prompt for the encrypted store passphrase instead of using a generated one")
}

// resolveStore picks the store backend from the flag or the configuration
// and builds its manager.
func resolveStore(cfg *config.Config) (*cookies.Manager, error) {
	kind := cookieStoreKind
	if kind == "" {
		kind = cfg.Cookies.Store
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" || kind == "none" {
		return nil, fmt.Errorf("no cookie store configured; pass --store or set cookies.store in the config file")
	}

	maybePromptPassphrase()
	return cookies.NewManagerFor(kind)
}

// maybePromptPassphrase reads the encrypted store passphrase from the
// terminal and hands it over through the environment the store reads.
func maybePromptPassphrase() {
	if !askPassphrase || os.Getenv("TOKSCRAPER_PASSPHRASE") != "" {
		return
	}
	if !term.IsTerminal(int(syscall.Stdin)) {
		return
	}

	fmt.Print("Passphrase for the encrypted jar store: ")
	pass, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil || len(pass) == 0 {
		return
	}
	os.Setenv("TOKSCRAPER_PASSPHRASE", string(pass))
}

func runCookiesImport(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()

	jar, err := cookies.LoadFile(args[0])
	if err != nil {
		ui.PrintError("Failed to read cookie file: %v", err)
		os.Exit(1)
	}

	manager, err := resolveStore(cfg)
	if err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}

	if err := manager.Store(jar); err != nil {
		ui.PrintError("Failed to store jar: %v", err)
		os.Exit(1)
	}

	ui.PrintSuccess("Imported %d cookies into jar %q", len(jar.Cookies), jar.Name)
	if jar.MSToken() == "" {
		ui.PrintWarning("The export carries no msToken; search results may be thin until one is harvested")
	}
}

func runCookiesExport(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()

	manager, err := resolveStore(cfg)
	if err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}

	jar, err := manager.RetrieveDefault()
	if err != nil {
		ui.PrintError("No stored jar to export: %v", err)
		os.Exit(1)
	}

	if err := cookies.SaveFile(args[0], jar); err != nil {
		ui.PrintError("Failed to write cookie file: %v", err)
		os.Exit(1)
	}
	ui.PrintSuccess("Exported jar %q (%d cookies) to %s", jar.Name, len(jar.Cookies), args[0])
}

func runCookiesShow(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()

	manager, err := resolveStore(cfg)
	if err != nil {
		// No store configured; a plain cookie file may still be in play
		if cfg.Cookies.File != "" {
			if jar, ferr := cookies.LoadFile(cfg.Cookies.File); ferr == nil {
				printJar(cookies.SanitizeJar(jar), cfg.Cookies.File)
				return
			}
		}
		ui.PrintInfo("No cookie store configured", "run 'tokscraper cookies guide' to get started")
		return
	}

	jars, err := manager.List()
	if err != nil || len(jars) == 0 {
		ui.PrintInfo("No stored jars", "use 'tokscraper cookies import <file>' to add one")
		return
	}

	ui.PrintHighlight("Stored cookie jars")
	fmt.Println()
	for _, jar := range jars {
		printJar(cookies.SanitizeJar(jar), "")
	}
}

func printJar(jar *cookies.Jar, source string) {
	fmt.Printf("Jar: %s (%d cookies)\n", jar.Name, len(jar.Cookies))
	if source != "" {
		fmt.Printf("  Source: %s\n", source)
	}
	if token := jar.MSToken(); token != "" {
		fmt.Printf("  msToken: %s\n", token)
	} else {
		fmt.Println("  msToken: (none)")
	}
	if !jar.LastModified.IsZero() {
		fmt.Printf("  Last modified: %s\n", jar.LastModified.Format("2006-01-02 15:04:05"))
	}
	fmt.Println()
}

func runCookiesDelete(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()

	manager, err := resolveStore(cfg)
	if err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}

	if err := manager.Delete(args[0]); err != nil {
		ui.PrintError("Failed to delete jar: %v", err)
		os.Exit(1)
	}
	ui.PrintSuccess("Jar removed: %s", args[0])
}
