package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/keygate/internal/client/cli"
	"github.com/dmitrijs2005/keygate/internal/client/config"
	"github.com/dmitrijs2005/keygate/internal/flagx"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	args := flagx.Positional(os.Args[1:], []string{"-a", "-c", "-config", "-token-file", "-timeout"})
	code := app.Run(ctx, args)
	stop()
	os.Exit(code)

}
