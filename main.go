package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/securecookie"
	"github.com/rs/zerolog"

	"github.com/Uraesh/Mon-portfolio/config"
	"github.com/Uraesh/Mon-portfolio/i/sendgrid"
	"github.com/Uraesh/Mon-portfolio/system"
)

var Version = "v0.1.0"

func main() {

	// defaults
	var (
		devmode     = false
		addr        = ""
		configpath  = ""
		showVersion = false
	)

	// flags
	flag.StringVar(&addr, "addr", addr, "address to serve (default "+config.DefaultListenAddr+")")
	flag.BoolVar(&devmode, "dev", devmode, "development mode (console logs, insecure csrf cookie)")
	flag.StringVar(&configpath, "conf", configpath, "path to config.json (use - for stdin)")
	flag.BoolVar(&showVersion, "version", false, "show version and exit")
	doConfigDump := flag.Bool("dumpconfig", false, "dump config and exit")
	flag.Parse()

	if showVersion {
		println("portfolio", Version)
		os.Exit(0)
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// read config file or stdin
	conf, err := config.Load(configpath, os.Stdin)
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}
	conf.Meta.Version = "portfolio " + Version

	// override config with flags
	if devmode {
		conf.Meta.DevelopmentMode = true
	}
	if addr != "" {
		conf.Meta.ListenAddr = addr
	}
	if conf.Meta.DevelopmentMode {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	if err := config.Check(conf); err != nil {
		log.Fatal().Err(err).Msg("boot error")
	}
	if conf.Sec.CSRF && conf.Sec.CSRFKey == "" {
		key := securecookie.GenerateRandomKey(32)
		if key == nil {
			log.Fatal().Msg("could not generate csrf key")
		}
		log.Warn().Msg("no Security.csrf-key set, using a random key until restart")
		conf.Sec.CSRFKey = string(key)
	}

	if *doConfigDump {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent(" ", " ")
		if err := enc.Encode(conf.Redacted()); err != nil {
			log.Fatal().Err(err).Send()
		}
		return
	}

	var sender system.Sender
	if conf.EmailConfigured() {
		sender = sendgrid.New(conf.Keys.SendgridAPIKey, conf.Keys.SendgridHost)
		log.Info().Str("to", conf.Contact.To).Msg("sendgrid configured")
	} else {
		log.Warn().Msg("SENDGRID_API_KEY not set, contact messages will only be logged")
	}

	s := system.New(*conf, log, sender)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("public", conf.Meta.PathPublic).Str("siteurl", conf.Meta.SiteURL).Msg(conf.Meta.Version)
	if err := s.Run(ctx, s.Handler()); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}
