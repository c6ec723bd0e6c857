package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/ciphersafe/internal/server"
	"github.com/dmitrijs2005/ciphersafe/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		os.Exit(1)
	}

	app.Run(context.Background())
}
