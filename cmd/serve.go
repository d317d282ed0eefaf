package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/hostsearch/pkg/api"
	"github.com/rubiojr/hostsearch/pkg/censys"
	"github.com/rubiojr/hostsearch/pkg/config"
	"github.com/rubiojr/hostsearch/pkg/log"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the search proxy and the web interface",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "Port to listen on (overrides config and PORT)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to (overrides config)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("host"), c.String("port"))
		},
	}
}

// serve runs the backend until SIGINT or SIGTERM. SIGHUP and config file
// changes reload the upstream credentials.
func serve(ctx context.Context, configPath, host, port string) error {
	logger := log.ForService("serve")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("parsing port: %w", err)
		}
		cfg.Server.Port = p
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	upstream := censys.NewClient(cfg.Censys.URL, cfg.Censys.APIID, cfg.Censys.APISecret)
	if !upstream.HasCredentials() {
		logger.Warnf("Censys API credentials are not configured, searches will fail until they are")
	}

	apiServer := api.NewServer(upstream)
	webServer := NewWebServer(newProxyClient(cfg), searchOptions(cfg), upstream.HasCredentials)

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: newHandler(apiServer, webServer),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on http://%s", cfg.Addr())
		logger.Infof("Available endpoints:")
		logger.Infof("  GET / - Search page")
		logger.Infof("  GET /ws - Search session websocket")
		logger.Infof("  GET /api/fetchSearchResults - Search proxy")
		logger.Infof("  GET /health - Health check")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	apply := func(c *config.Config) {
		upstream.SetCredentials(c.Censys.APIID, c.Censys.APISecret)
		upstream.SetBaseURL(c.Censys.URL)
	}

	if _, err := os.Stat(configPath); err == nil {
		go func() {
			if err := config.Watch(ctx, configPath, apply); err != nil {
				logger.Warnf("config watcher stopped: %v", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case err, ok := <-serveErr:
			if ok {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil

		case <-ctx.Done():
			return shutdown(server)

		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				logger.Infof("Received SIGHUP, reloading configuration...")
				newCfg, err := config.LoadConfig(configPath)
				if err != nil {
					logger.Errorf("Failed to reload configuration: %v", err)
					continue
				}
				apply(newCfg)
				logger.Infof("Configuration reloaded")
				continue
			}
			logger.Infof("Shutting down...")
			return shutdown(server)
		}
	}
}

// newHandler wires the API and web routes behind CORS, access logging and
// compression. The websocket skips compression.
func newHandler(apiServer *api.Server, webServer *WebServer) http.Handler {
	mux := http.NewServeMux()
	apiServer.RegisterRoutes(mux)
	webServer.RegisterRoutes(mux)

	root := http.NewServeMux()
	root.Handle("GET /ws", api.RequestLogger(webServer.WebSocketHandler()))
	root.Handle("/", api.CorsMiddleware(api.RequestLogger(api.Compress(mux))))
	return root
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
