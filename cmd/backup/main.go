package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"wordclash/internal/config"
	"wordclash/internal/database"
	"wordclash/internal/service"
	"wordclash/migrations"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
			os.Exit(2)
		}
		log.WithError(err).Fatal("Backup command failed")
	}
}

func run(ctx context.Context, command string, args []string) error {
	switch command {
	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		output := fs.String("output", "", "Output file, - for stdout (default: wordclash_YYYYMMDD_HHMMSS.json)")
		fs.Parse(args)
		return withBackupService(ctx, func(backups *service.BackupService) error {
			return export(ctx, backups, *output)
		})

	case "import":
		fs := flag.NewFlagSet("import", flag.ExitOnError)
		input := fs.String("input", "", "Backup file to restore (required)")
		clearFirst := fs.Bool("clear", false, "Delete all themes, settings and history first")
		yes := fs.Bool("yes", false, "Do not ask before clearing")
		fs.Parse(args)
		if *input == "" {
			fs.PrintDefaults()
			return fmt.Errorf("%w: -input is required", errUsage)
		}
		return withBackupService(ctx, func(backups *service.BackupService) error {
			return restore(ctx, backups, *input, *clearFirst, *yes)
		})
	}
	return errUsage
}

// withBackupService opens the configured database, brings its schema up to
// date and hands a backup service to fn
func withBackupService(ctx context.Context, fn func(*service.BackupService) error) error {
	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	// stdout may carry the backup itself
	log.SetOutput(os.Stderr)

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(migrations.FS); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return fn(service.NewBackupService(db))
}

func export(ctx context.Context, backups *service.BackupService, output string) error {
	if output == "-" {
		return backups.ExportToWriter(ctx, os.Stdout)
	}
	if output == "" {
		output = fmt.Sprintf("wordclash_%s.json", time.Now().Format("20060102_150405"))
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := backups.Export(ctx, output); err != nil {
		return err
	}
	if info, err := os.Stat(output); err == nil {
		log.WithFields(log.Fields{
			"file":    output,
			"size_kb": fmt.Sprintf("%.2f", float64(info.Size())/1024),
		}).Info("Export complete")
	}
	return nil
}

func restore(ctx context.Context, backups *service.BackupService, input string, clearFirst, yes bool) error {
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("cannot read backup: %w", err)
	}

	if clearFirst {
		if !yes && !confirm("This deletes every theme, setting and stored session. Type 'yes' to continue: ") {
			log.Info("Import cancelled")
			return nil
		}
		if err := backups.Clear(ctx); err != nil {
			return err
		}
	}

	if err := backups.Import(ctx, input); err != nil {
		return err
	}
	log.WithField("file", input).Info("Import complete")
	return nil
}

func confirm(prompt string) bool {
	fmt.Fprint(os.Stderr, prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(answer) == "yes"
}

func printUsage() {
	fmt.Fprint(os.Stderr, `wordclash backup tool

Usage:
  backup export [-output <file>|-]
  backup import -input <file> [-clear] [-yes]

Export writes themes, words, settings and session history as JSON.
Import is idempotent: rows that already exist are left untouched.

Environment:
  DB_TYPE        sqlite, postgres or mysql (default: sqlite)
  DB_PATH        SQLite database path (default: ./wordclash.db)
  DATABASE_URL   PostgreSQL or MySQL connection URL
`)
}
