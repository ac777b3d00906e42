package main

import (
	"context"
	"log"
	"os"

	"duelgrid/server/internal/app"
)

func main() {
	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
}
