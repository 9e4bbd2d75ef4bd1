package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"employeedir/internal/platform/config"
	"employeedir/internal/platform/db"
)

const usage = `usage: migrate [-dir migrations] <command> [args]

commands:
  up                   apply all pending migrations
  up-by-one            apply the next pending migration
  down                 roll back the latest migration
  redo                 roll back and re-apply the latest migration
  reset                roll back every migration
  status               print the state of each migration
  version              print the current schema version
  create NAME sql      scaffold a new SQL migration
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	flags := flag.NewFlagSet("migrate", flag.ExitOnError)
	dir := flags.String("dir", cfg.MigrationsDir, "directory with goose migration files")
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = flags.Parse(os.Args[1:])

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(pool, args[0], *dir, args[1:]...); err != nil {
		pool.Close()
		log.Fatalf("migrate %s: %v", args[0], err)
	}
	log.Printf("migrate %s: done", args[0])
}
