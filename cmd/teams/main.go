package main

import (
	"context"
	"log"

	"github.com/jaftdelgado/aureum-services/internal/server"
	"github.com/jaftdelgado/aureum-services/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig(config.ServiceTeams)
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
