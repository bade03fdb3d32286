package banner

import (
	"fmt"

	"foliodb/pkg/config"
)

const banner = `
███████╗ ██████╗ ██╗     ██╗ ██████╗ ██████╗ ██████╗
██╔════╝██╔═══██╗██║     ██║██╔═══██╗██╔══██╗██╔══██╗
█████╗  ██║   ██║██║     ██║██║   ██║██║  ██║██████╔╝
██╔══╝  ██║   ██║██║     ██║██║   ██║██║  ██║██╔══██╗
██║     ╚██████╔╝███████╗██║╚██████╔╝██████╔╝██████╔╝
╚═╝      ╚═════╝ ╚══════╝╚═╝ ╚═════╝ ╚═════╝ ╚═════╝
`

// PrintWithEff prints the startup banner with the effective configuration:
// where it came from, where the store lives and what still needs attention
// before production use.
func PrintWithEff(eff config.EffectiveConfigResult, version string) {
	addr := eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	storePath := eff.StorePath
	if storePath == "" && eff.Config != nil {
		storePath = eff.Config.Storage.StorePath
	}
	src := eff.Source
	if src == "" {
		src = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("Store:    %s\n", storePath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config:   %s\n", src)

	fmt.Println("\n== Examples ===================================================")
	fmt.Println("curl 'http://<host>:<port>/v1/posts'")
	fmt.Println("curl -X POST 'http://<host>:<port>/v1/auth/login' -d '{\"email\":\"...\",\"password\":\"...\"}'")

	fmt.Println("\n== Production? ================================================")
	if storePath != "" {
		fmt.Printf("- Store path: %s\n", storePath)
	} else {
		fmt.Println("- Store path: not set (use --store or FOLIODB_STORE_PATH); running degraded")
	}

	adminSet := eff.Config != nil && eff.Config.Auth.AdminEmail != "" && eff.Config.Auth.AdminPassword != ""
	if adminSet {
		fmt.Printf("- Admin user: %s\n", eff.Config.Auth.AdminEmail)
	} else {
		fmt.Println("- Admin user: MISSING (set FOLIODB_ADMIN_EMAIL / FOLIODB_ADMIN_PASSWORD)")
	}

	tlsOK := eff.Config != nil && eff.Config.Server.TLS.CertFile != "" && eff.Config.Server.TLS.KeyFile != ""
	if tlsOK {
		fmt.Println("- TLS: configured")
	} else {
		fmt.Println("- TLS: unconfigured")
	}

	if eff.Config != nil && eff.Config.Backups.Schedule != "" {
		fmt.Printf("- Scheduled backups: enabled (cron=%s)\n", eff.Config.Backups.Schedule)
	} else {
		fmt.Println("- Scheduled backups: disabled")
	}

	fmt.Println("\n== Logs: ======================================================")
}
