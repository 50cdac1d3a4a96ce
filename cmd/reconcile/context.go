package main

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/llehouerou/reconcile/internal/config"
	"github.com/llehouerou/reconcile/internal/errmsg"
	"github.com/llehouerou/reconcile/internal/logging"
	"github.com/llehouerou/reconcile/internal/mbcache"
	"github.com/llehouerou/reconcile/internal/metadata"
	"github.com/llehouerou/reconcile/internal/musicbrainz"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	config    *config.Config
	logCloser io.Closer
	closers   []io.Closer
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{configFlag: configFlag, verbose: verbose}
}

// setup loads the configuration and installs the global logger.
func (c *commandContext) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if path := strings.TrimSpace(*c.configFlag); path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return errmsg.Wrap(errmsg.OpConfigLoad, "", err)
	}
	c.config = cfg

	logCfg := cfg.GetLogConfig()
	consoleLevel := "warn"
	if *c.verbose {
		consoleLevel = "debug"
	}
	closer, err := logging.Setup(logging.Options{
		Level:        logCfg.Level,
		File:         logCfg.File,
		Console:      cmd.ErrOrStderr(),
		ConsoleLevel: consoleLevel,
	})
	if err != nil {
		return errmsg.Wrap(errmsg.OpInitialize, "", err)
	}
	c.logCloser = closer
	log.Debug().Str("command", cmd.CommandPath()).Msg("starting")
	return nil
}

func (c *commandContext) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
	c.closers = nil
	if c.logCloser != nil {
		_ = c.logCloser.Close()
	}
}

// openCache opens the provider response cache.
func (c *commandContext) openCache() (*mbcache.Cache, error) {
	cacheCfg := c.config.GetCacheConfig()
	cache, err := mbcache.Open(cacheCfg.Path, time.Duration(cacheCfg.TTLDays)*24*time.Hour)
	if err != nil {
		return nil, errmsg.Wrap(errmsg.OpCacheOpen, cacheCfg.Path, err)
	}
	c.closers = append(c.closers, cache)
	return cache, nil
}

// provider builds the rate-limited MusicBrainz provider, behind the
// response cache unless it is disabled.
func (c *commandContext) provider() (metadata.Provider, error) {
	mbCfg := c.config.GetMusicBrainzConfig()
	opts := []musicbrainz.Option{musicbrainz.WithRateLimit(mbCfg.RequestsPerSecond)}
	if mbCfg.UserAgent != "" {
		opts = append(opts, musicbrainz.WithUserAgent(mbCfg.UserAgent))
	}
	if mbCfg.BaseURL != "" {
		opts = append(opts, musicbrainz.WithBaseURL(mbCfg.BaseURL))
	}

	var p metadata.Provider = musicbrainz.NewProvider(musicbrainz.NewClient(opts...))
	if c.config.GetCacheConfig().Disabled {
		return p, nil
	}

	cache, err := c.openCache()
	if err != nil {
		return nil, err
	}
	return mbcache.Wrap(p, cache), nil
}
