package cmd

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/krau/konaclassify/cache"
	"github.com/krau/konaclassify/config"
	"github.com/krau/konaclassify/onnx"
	"github.com/krau/konaclassify/server"
)

var serveFlags struct {
	files modelFiles
	addr  string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve predictions over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.C()

		classifier, model, err := loadClassifier(newEngine(cfg), cfg, serveFlags.files)
		if err != nil {
			return err
		}
		defer onnx.Shutdown()
		defer model.Close()

		fp, err := fingerprint(cfg, serveFlags.files, classifier.Labels())
		if err != nil {
			return err
		}
		results, err := openResults(cfg, fp)
		if err != nil {
			return err
		}
		defer results.Close()

		addr := serveFlags.addr
		if addr == "" {
			addr = cfg.Host + ":" + cfg.Port
		}
		gin.SetMode(gin.ReleaseMode)
		srv := server.New(classifier, results, server.Options{
			Token:          cfg.Token,
			DefaultK:       cfg.TopK,
			MaxUploadBytes: cfg.UploadLimit(),
		})
		return srv.Run(cmd.Context(), addr)
	},
}

func init() {
	f := serveCmd.Flags()
	addModelFlags(serveCmd, &serveFlags.files)
	f.StringVar(&serveFlags.addr, "addr", "", "listen address (default host:port from config)")
}

func openResults(cfg config.Config, fingerprint string) (*cache.Results, error) {
	if cfg.CacheDir == "" {
		return cache.NewResults(cache.NewMemory(), fingerprint), nil
	}
	ttl, err := cfg.CacheExpiry()
	if err != nil {
		return nil, err
	}
	store, err := cache.NewBadger(cache.BadgerOptions{Dir: cfg.CacheDir, TTL: ttl})
	if err != nil {
		return nil, err
	}
	slog.Info("Using result cache", slog.String("dir", cfg.CacheDir), slog.String("fingerprint", fingerprint))
	return cache.NewResults(store, fingerprint), nil
}
