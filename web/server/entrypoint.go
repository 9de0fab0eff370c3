// Package server implements the entry point for running the annotation web server.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/posetrace/posetrace/config"
	"github.com/posetrace/posetrace/detector"
	"github.com/posetrace/posetrace/history"
	"github.com/posetrace/posetrace/render"
	"github.com/posetrace/posetrace/web"
)

// Arguments for the command line.
type Arguments struct {
	ConfigFile string `flag:"0,required,usage=service config file"`
	Debug      bool   `flag:"debug"`
}

// RunServer is an entry point to starting the web server that can be called by main
// or by tests. It blocks until the context is done.
func RunServer(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.Debug {
		logger = golog.NewDebugLogger("server")
	}

	cfg, err := config.Read(argsParsed.ConfigFile)
	if err != nil {
		return err
	}

	if err := serveWeb(ctx, cfg, logger); err != nil {
		logger.Errorw("error serving web", "error", err)
		return err
	}
	return nil
}

func serveWeb(ctx context.Context, cfg *config.Config, logger golog.Logger) error {
	for _, dir := range []string{cfg.UploadDir(), cfg.ProcessedDir(), cfg.PoseDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "cannot create %q", dir)
		}
	}

	det := detector.NewClient(cfg.PoseAPI.URL, cfg.PoseAPI.Timeout(), logger)
	rend := render.NewRenderer(cfg.Render.Options(), logger)
	hist := history.NewStore(cfg.HistoryFile, clock.New(), logger)
	srv := web.New(cfg, det, rend, hist, logger)

	listener, err := net.Listen("tcp", cfg.BindAddress)
	if err != nil {
		return err
	}

	httpServer, err := utils.NewPossiblySecureHTTPServer(srv.Handler(), utils.HTTPServerOptions{
		MaxHeaderBytes: 1 << 20,
		Addr:           listener.Addr().String(),
	})
	if err != nil {
		return err
	}
	// Uploads can take minutes on slow links; cap only the header read.
	httpServer.ReadTimeout = 0
	httpServer.ReadHeaderTimeout = 10 * time.Second

	utils.PanicCapturingGo(func() {
		<-ctx.Done()
		if err := httpServer.Shutdown(context.Background()); err != nil {
			logger.Errorw("error shutting down", "error", err)
		}
	})

	logger.Infow("serving", "url", fmt.Sprintf("http://%s", listener.Addr().String()))
	if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
