// Seeds demonstration directory data: one service center, one owner and one
// registered vehicle, enough to walk the full alert-to-booking conversation.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	centerID := uuid.New()
	if _, err := pool.Exec(ctx, `
		INSERT INTO service_centers (id, name, company_name, location)
		VALUES ($1, $2, $3, $4)
	`, centerID, "Tata Motors Authorized Service", "Tata", "Downtown, Main Street"); err != nil {
		log.Fatalf("insert service center: %v", err)
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO users (user_id, phone)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET phone = EXCLUDED.phone
	`, "demo-owner", "+15005550006"); err != nil {
		log.Fatalf("insert user: %v", err)
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO vehicles (vehicle_id, user_id, brand)
		VALUES ($1, $2, $3)
		ON CONFLICT (vehicle_id) DO UPDATE SET user_id = EXCLUDED.user_id, brand = EXCLUDED.brand
	`, "Tata_V11", "demo-owner", "Tata"); err != nil {
		log.Fatalf("insert vehicle: %v", err)
	}

	fmt.Printf("seeded service center %s, user demo-owner, vehicle Tata_V11\n", centerID)
}
