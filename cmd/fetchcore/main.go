// Command fetchcore fetches one artifact from a set of HTTP package feeds,
// racing the feeds and writing whichever payload arrives first.
package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/crgimenes/goconfig"
	"github.com/quay/zlog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fetchcore/fetchcore"
	"github.com/fetchcore/fetchcore/httpsource"
	"github.com/fetchcore/fetchcore/libfetch"
)

// Config this struct is using the goconfig library for simple flag and env
// var parsing. See: https://github.com/crgimenes/goconfig
type Config struct {
	Feeds    string `cfg:"FEEDS" cfgHelper:"Comma-separated list of package feed root URLs"`
	Package  string `cfg:"PACKAGE" cfgHelper:"Name of the package to fetch"`
	Version  string `cfg:"VERSION" cfgHelper:"Version of the package to fetch"`
	Output   string `cfgDefault:"-" cfg:"OUTPUT" cfgHelper:"File to write the artifact to, or - for stdout"`
	LogLevel string `cfgDefault:"info" cfg:"LOG_LEVEL" cfgHelper:"Log levels: debug, info, warning, error, fatal, panic"`
}

func main() {
	ctx := context.Background()
	conf := Config{}
	if err := goconfig.Parse(&conf); err != nil {
		log.Fatal().Msgf("failed to parse config: %v", err)
	}

	// setup pretty logging
	zerolog.SetGlobalLevel(logLevel(conf))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zlog.Set(&log.Logger)

	id, err := fetchcore.NewIdentity(conf.Package, conf.Version)
	if err != nil {
		log.Fatal().Msgf("bad package identity: %v", err)
	}

	var srcs []fetchcore.Source
	for _, root := range strings.Split(conf.Feeds, ",") {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		s, err := httpsource.New(root, root, nil)
		if err != nil {
			log.Fatal().Msgf("bad feed %q: %v", root, err)
		}
		if _, err := s.Index(ctx); err != nil {
			log.Warn().Msgf("feed %q did not serve an index: %v", root, err)
		}
		srcs = append(srcs, s)
	}
	if len(srcs) == 0 {
		log.Fatal().Msg("no feeds configured")
	}

	lib, err := libfetch.New(ctx, &libfetch.Options{Sources: srcs})
	if err != nil {
		log.Fatal().Msgf("failed to create libfetch: %v", err)
	}

	res, err := lib.Fetch(ctx, id, nil)
	if err != nil {
		log.Fatal().Msgf("failed to fetch %v: %v", id, err)
	}
	defer res.Close()

	out := os.Stdout
	if conf.Output != "-" {
		out, err = os.Create(conf.Output)
		if err != nil {
			log.Fatal().Msgf("failed to open output: %v", err)
		}
		defer out.Close()
	}
	if _, err := io.Copy(out, res.Data); err != nil {
		log.Fatal().Msgf("failed to write artifact: %v", err)
	}
	log.Info().Msgf("fetched %v from %s", id, res.Source)
}

func logLevel(conf Config) zerolog.Level {
	level := strings.ToLower(conf.LogLevel)
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}
