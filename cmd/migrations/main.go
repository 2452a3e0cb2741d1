package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vncsmyrnk/tasks/internal/adapters/repository/postgres"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	list := flag.Bool("list", false, "List migrations instead of applying them")
	flag.Parse()

	if *direction != "up" && *direction != "down" {
		log.Fatalf("invalid direction %q", *direction)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	names, err := postgres.MigrationNames(*direction)
	if err != nil {
		log.Fatal(err)
	}
	if name := flag.Arg(0); name != "" {
		names = filterMigrations(names, name)
		if len(names) == 0 {
			log.Fatalf("migration %q not found", name)
		}
	}

	if *list {
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, dbConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	for _, name := range names {
		if err := postgres.ApplyMigration(ctx, db, name); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Applied %s\n", name)
	}
}

func filterMigrations(names []string, pattern string) []string {
	var out []string
	for _, name := range names {
		if strings.Contains(name, pattern) {
			out = append(out, name)
		}
	}
	return out
}

func dbConnString() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	dbName, user, password, host, port := dbConfig()
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
}

func dbConfig() (dbName string, user string, password string, host string, port string) {
	dbName = os.Getenv("POSTGRES_DB")
	user = os.Getenv("POSTGRES_USER")
	password = os.Getenv("POSTGRES_PASSWORD")
	host = os.Getenv("POSTGRES_HOST")
	port = os.Getenv("POSTGRES_PORT")
	return
}
