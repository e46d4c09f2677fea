package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/ticketdesk/ticketdesk/config"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	users := []struct {
		name  string
		email string
		age   int
	}{
		{"Alice Demo", "alice@example.com", 34},
		{"Bob Demo", "bob@example.com", 28},
	}

	ids := make([]int64, 0, len(users))
	for _, u := range users {
		var id int64
		err := db.QueryRow(`
			INSERT INTO users (name, email, age)
			VALUES ($1, $2, $3)
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, u.name, u.email, u.age).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", u.email, err)
		}
		ids = append(ids, id)
		fmt.Printf("seeded user: id=%d email=%s\n", id, u.email)
	}

	tickets := []struct {
		title       string
		description string
		status      string
		creator     int64
		assignee    *int64
	}{
		{"Fix login redirect loop", "Users bounce between /login and /home after the last deploy.", "open", ids[0], &ids[1]},
		{"Upgrade Postgres driver", "Move to the current pgx minor release.", "in_progress", ids[0], nil},
		{"Write onboarding doc", "New hires need a setup walkthrough.", "done", ids[1], &ids[0]},
	}

	for _, t := range tickets {
		var id int64
		err := db.QueryRow(`
			INSERT INTO tickets (title, description, status, creator_id, assignee_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, t.title, t.description, t.status, t.creator, t.assignee).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed ticket %q: %v", t.title, err)
		}
		fmt.Printf("seeded ticket: id=%d title=%q\n", id, t.title)
	}
}
