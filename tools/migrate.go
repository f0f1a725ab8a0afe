package main

import (
	"fmt"
	"os"

	"storefront-auth/database"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "migrate" {
		fmt.Println("Usage:")
		fmt.Println("  go run tools/migrate.go migrate - Run database migrations")
		return
	}

	fmt.Println("🚀 Running database migrations...")
	if _, err := database.InitDB(); err != nil {
		fmt.Printf("❌ Migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Migration completed successfully!")
}
