package cookies

import (
	"fmt"
	"strings"
)

// ShowCookieExportGuide displays step-by-step instructions for exporting cookies
func ShowCookieExportGuide() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("📚 TIKTOK COOKIE EXPORT GUIDE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	fmt.Println("Cookies are optional: the endpoints answer without them. A fresh msToken")
	fmt.Println("makes search and recommendation results noticeably richer though.")
	fmt.Println()

	fmt.Println("🌐 STEP 1: Open TikTok in your browser")
	fmt.Println("   - Go to https://www.tiktok.com")
	fmt.Println("   - Browse a few videos so the site issues fresh tokens")
	fmt.Println("   - Logging in is optional")
	fmt.Println()

	fmt.Println("🔧 STEP 2: Open Developer Tools")
	fmt.Println("   • Chrome/Edge/Brave: Press F12 or Ctrl+Shift+I (Cmd+Option+I on Mac)")
	fmt.Println("   • Firefox: Press F12 or Ctrl+Shift+I (Cmd+Option+I on Mac)")
	fmt.Println()

	fmt.Println("🍪 STEP 3: Find your cookies")
	fmt.Println("   1. Go to 'Application' tab (Chrome) or 'Storage' tab (Firefox)")
	fmt.Println("   2. In the left sidebar, expand 'Cookies'")
	fmt.Println("   3. Click on 'https://www.tiktok.com'")
	fmt.Println()

	fmt.Println("🔑 STEP 4: Copy these values:")
	fmt.Println("   ┌────────────────┬─────────────────────────────────────────────┐")
	fmt.Println("   │ Cookie Name    │ What it looks like                          │")
	fmt.Println("   ├────────────────┼─────────────────────────────────────────────┤")
	fmt.Println("   │ msToken        │ Long URL-safe string, rotates often         │")
	fmt.Println("   ├────────────────┼─────────────────────────────────────────────┤")
	fmt.Println("   │ sessionid      │ Only present when logged in                 │")
	fmt.Println("   └────────────────┴─────────────────────────────────────────────┘")
	fmt.Println()

	fmt.Println("📦 STEP 5: Save them for the tool, either way works:")
	fmt.Println("   • Export everything with a cookie-export extension as JSON and pass")
	fmt.Println("     the file via --cookies cookies.json")
	fmt.Println("   • Or set TOKSCRAPER_MS_TOKEN (and TOKSCRAPER_SESSION_ID) in the")
	fmt.Println("     environment / .env file")
	fmt.Println()

	fmt.Println("💡 TIPS:")
	fmt.Println("   • Copy the ENTIRE value (everything after the = sign)")
	fmt.Println("   • msToken expires quickly, re-export when results thin out")
	fmt.Println("   • Use a secondary account if you log in at all")
	fmt.Println()

	fmt.Println("⚠️  SECURITY WARNING:")
	fmt.Println("   • A sessionid cookie gives FULL access to the TikTok account")
	fmt.Println("   • NEVER share exported cookie files")
	fmt.Println("   • Prefer the keyring or encrypted store for saved jars")
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
}

// ShowQuickExportGuide shows a condensed version for experienced users
func ShowQuickExportGuide() {
	fmt.Println("\n🍪 Quick Guide: F12 → Application tab → Cookies → https://www.tiktok.com")
	fmt.Println("   Want: msToken=... (and sessionid=... when logged in)")
	fmt.Println("   Run 'tokscraper cookies guide' for detailed instructions")
}
