package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/technicalserena/tunegram/internal/config"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check system environment and configuration health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("tunegram doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (NOT FOUND, using env only)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}

	fmt.Println()
	fmt.Println("  Credentials:")
	checkSecret("Bot token", cfg.Bot.Token)
	checkSecret("YT API key", cfg.Search.APIKey)
	checkID("Owner ID", cfg.Bot.OwnerID)
	checkID("Channel ID", cfg.Archive.ChannelID)

	fmt.Println()
	fmt.Println("  Database:")
	if cfg.Database.PostgresDSN != "" {
		checkDB("postgres", "pgx", cfg.Database.PostgresDSN)
	} else {
		checkSQLiteDB(cfg.Database.Path)
	}

	fmt.Println()
	fmt.Println("  External Tools:")
	checkBinary(cfg.Download.YtdlpPath)
	checkBinary("ffmpeg")

	fmt.Println()
	ws := cfg.Download.TempDir
	fmt.Printf("  Temp dir: %s", ws)
	if _, err := os.Stat(ws); err != nil {
		fmt.Println(" (NOT FOUND, will be created on first download)")
	} else {
		fmt.Println(" (OK)")
	}

	fmt.Println()
	fmt.Println("Doctor check complete.")
}

func checkSecret(name, value string) {
	if value == "" {
		fmt.Printf("    %-12s (not configured)\n", name+":")
		return
	}
	masked := value
	if len(value) > 8 {
		masked = value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
	}
	fmt.Printf("    %-12s %s\n", name+":", masked)
}

func checkID(name string, id int64) {
	if id == 0 {
		fmt.Printf("    %-12s (not configured)\n", name+":")
	} else {
		fmt.Printf("    %-12s %d\n", name+":", id)
	}
}

func checkDB(label, driver, dsn string) {
	fmt.Printf("    %-12s %s\n", "Backend:", label)
	pingDB(driver, dsn)
}

func pingDB(driver, dsn string) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		fmt.Printf("    %-12s CONNECT FAILED (%s)\n", "Status:", err)
		return
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		fmt.Printf("    %-12s CONNECT FAILED (%s)\n", "Status:", err)
		return
	}
	fmt.Printf("    %-12s OK\n", "Status:")
}

// checkSQLiteDB stats the file before opening it. sql.Open plus Ping
// would create an empty database as a side effect, and a health check
// must not change the system it inspects.
func checkSQLiteDB(path string) {
	fmt.Printf("    %-12s sqlite\n", "Backend:")
	if _, err := os.Stat(path); err != nil {
		fmt.Printf("    %-12s NOT FOUND (%s, created on first run)\n", "Status:", path)
		return
	}
	pingDB("sqlite", path)
}

func checkBinary(name string) {
	path, err := exec.LookPath(name)
	if err != nil {
		fmt.Printf("    %-12s NOT FOUND\n", name+":")
	} else {
		fmt.Printf("    %-12s %s\n", name+":", path)
	}
}
