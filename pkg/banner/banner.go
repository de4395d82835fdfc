package banner

import (
	"fmt"
)

const banner = `
██╗    ██╗ █████╗ ██████╗ ██████╗ ██╗██████╗  ██████╗ ███████╗
██║    ██║██╔══██╗██╔══██╗██╔══██╗██║██╔══██╗██╔════╝ ██╔════╝
██║ █╗ ██║███████║██████╔╝██████╔╝██║██║  ██║██║  ███╗█████╗
██║███╗██║██╔══██║██╔══██╗██╔══██╗██║██║  ██║██║   ██║██╔══╝
╚███╔███╔╝██║  ██║██████╔╝██║  ██║██║██████╔╝╚██████╔╝███████╗
 ╚══╝╚══╝ ╚═╝  ╚═╝╚═════╝ ╚═╝  ╚═╝╚═╝╚═════╝  ╚═════╝ ╚══════╝
`

// Print writes the startup banner with the effective runtime settings
// and a short endpoint reference.
func Print(addr, credsPath, sources, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:      %s\n", addr)
	fmt.Printf("Credentials: %s\n", credsPath)
	if version != "" {
		fmt.Printf("Version:     %s\n", version)
	}
	if sources != "" {
		fmt.Printf("Config sources: %s\n", sources)
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("GET  /status               - Connection state and own identity")
	fmt.Println("GET  /qr.png               - Pairing code as PNG (204 when none pending)")
	fmt.Println("GET  /events               - Live event stream (SSE)")
	fmt.Println("GET  /messages?limit=<n>   - Recent messages, oldest first")
	fmt.Println("POST /send                 - Send a text (JSON: to, message)")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl 'http://localhost%s/status'\n", addr)
	fmt.Printf("curl -X POST 'http://localhost%s/send' -d '{\"to\":\"+15551234567\",\"message\":\"hello\"}'\n", addr)
}
