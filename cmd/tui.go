package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/rubiojr/hostsearch/pkg/config"
	"github.com/rubiojr/hostsearch/pkg/log"
	"github.com/rubiojr/hostsearch/pkg/search"
	"github.com/rubiojr/hostsearch/pkg/tui"
)

// TUICommand creates the tui command
func TUICommand() *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Usage:     "Interactive terminal search",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "proxy-url",
				Usage: "hostsearch backend URL (overrides config and HOSTSEARCH_PROXY_URL)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runTUI(ctx, c.String("config"), c.String("proxy-url"), strings.Join(c.Args().Slice(), " "))
		},
	}
}

func runTUI(ctx context.Context, configPath, proxyURL, query string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if proxyURL != "" {
		cfg.Client.ProxyURL = proxyURL
	}

	// Log lines would corrupt the alternate screen.
	log.SetOutput(io.Discard)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := search.NewSession(newProxyClient(cfg), search.WithSearchOptions(searchOptions(cfg)))
	defer sess.Close()

	m := tui.New(ctx, sess, query)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
