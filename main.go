package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"git.lost.host/meutraa/autochart/internal/config"
)

func main() {
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}

func run() error {
	settings, err := config.Parse(os.Args[1:])
	if nil != err {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := &Program{Settings: settings}
	if err := p.Init(); nil != err {
		return err
	}
	defer p.Deinit()

	return p.Run(ctx)
}
