package services

import (
	"database/sql"
	"log"
	"time"

	"github.com/bLanke01/daycare-sub000/app/database"
)

// StartCodeSweeper retires expired access codes in the background.
// Redemption checks expiry on its own, so the sweep only keeps the stored
// flags consistent for admin reporting.
func StartCodeSweeper(db *sql.DB) {
	go func() {
		log.Println("Access code sweeper started...")
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			n, err := database.ExpireStaleCodes(db)
			if err != nil {
				log.Printf("Error expiring stale access codes: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Expired %d stale access codes", n)
			}
		}
	}()
}
