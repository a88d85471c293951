package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gobarber/booking-api/internal/auth"
	"github.com/gobarber/booking-api/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(pool, "migrations"); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	// Seeded accounts share one password so the bcrypt work happens once.
	passwordHash, err := auth.HashPassword("123456")
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	if err := seedUsers(context.Background(), pool, passwordHash, 20, true); err != nil {
		log.Fatalf("seed providers: %v", err)
	}
	if err := seedUsers(context.Background(), pool, passwordHash, 200, false); err != nil {
		log.Fatalf("seed customers: %v", err)
	}

	log.Println("seed complete")
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, passwordHash string, count int, provider bool) error {
	kind := "customers"
	if provider {
		kind = "providers"
	}
	log.Printf("seeding %d %s", count, kind)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		name := gofakeit.Name()
		email := gofakeit.Email()

		var avatarID *int64
		if provider {
			// Providers get an avatar so listings have something to show.
			path := fmt.Sprintf("%s.jpg", gofakeit.UUID())
			url := "https://files.gobarber.com.br/" + path

			var id int64
			err := tx.QueryRow(ctx, `
				INSERT INTO files (path, url, created_at, updated_at)
				VALUES ($1, $2, now(), now())
				RETURNING id
			`, path, url).Scan(&id)
			if err != nil {
				return err
			}
			avatarID = &id
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO users (name, email, password_hash, provider, avatar_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, name, email, passwordHash, provider, avatarID)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Printf("%s seeded", kind)
	return nil
}
