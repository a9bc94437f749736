package main

import (
	"context"
	"log"

	"github.com/greenthumb/nursery-api/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("nursery API failed: %v", err)
	}
}
