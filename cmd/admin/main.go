// Command admin creates or promotes a storefront administrator. It reads the
// same configuration as the server.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/storefront/internal/server"
	"github.com/dmitrijs2005/storefront/internal/server/admincli"
	"github.com/dmitrijs2005/storefront/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	if err := admincli.Run(ctx, os.Stdin, os.Stdout, app.Users()); err != nil {
		log.Printf("%v", err)
		app.Close()
		os.Exit(1)
	}
}
