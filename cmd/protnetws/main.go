package main

import (
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/psidex/protnet/internal/cli"
	"github.com/psidex/protnet/internal/config"
	"github.com/psidex/protnet/internal/lib"
)

func main() {
	fs := pflag.NewFlagSet("protnetws", pflag.ExitOnError)
	cfgFile := fs.String("config", "", "config file (default: ./protnet.yaml)")
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(*cfgFile, fs)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := lib.LoggerFromLevel(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	s, err := cli.NewServer(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	log.Fatal(s.ListenAndServe(cfg.Address))
}
