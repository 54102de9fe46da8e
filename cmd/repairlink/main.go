package main

import (
	"fmt"
	"os"

	"github.com/bLanke01/daycare-sub000/app/config"
	"github.com/bLanke01/daycare-sub000/app/database"
	"github.com/bLanke01/daycare-sub000/app/linking"
)

// repairlink re-derives a parent's child links from the stored records,
// for when a registration never redeemed its access code or a redemption
// half-applied.
//
// Usage: repairlink <parent-email>
func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: repairlink <parent-email>")
		os.Exit(2)
	}
	parentEmail := os.Args[1]

	config.Init()
	db := config.GetDB()
	if db == nil {
		fmt.Println("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	svc := linking.NewServiceWithStores(database.NewStore(db))

	result, err := svc.Repair(parentEmail)
	if err != nil {
		fmt.Printf("Repair failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Repaired links for %s (user %s)\n", parentEmail, result.UserID)
	fmt.Printf("  matched by email: %v\n", result.EmailMatchIDs)
	fmt.Printf("  matched by code:  %v\n", result.CodeMatchIDs)
	fmt.Printf("  linked children:  %v\n", result.MatchedChildIDs)
	fmt.Printf("  retired codes:    %v\n", result.ExhaustedCodes)
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}
