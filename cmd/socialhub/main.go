package main

import (
	"log"

	"github.com/MrSnakeDoc/socialhub/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ socialhub failed to start: %v", err)
	}
}
