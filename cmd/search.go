package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/hostsearch/pkg/config"
	"github.com/rubiojr/hostsearch/pkg/hosts"
	"github.com/rubiojr/hostsearch/pkg/search"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search hosts through the hostsearch backend",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "query",
				Usage: "Search query (or pass it as arguments)",
			},
			&cli.IntFlag{
				Name:  "pages",
				Usage: "Number of result pages to fetch",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "per-page",
				Usage: "Results per page (defaults to the config value)",
			},
			&cli.StringFlag{
				Name:  "proxy-url",
				Usage: "hostsearch backend URL (overrides config and HOSTSEARCH_PROXY_URL)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			query := c.String("query")
			if query == "" {
				query = strings.Join(c.Args().Slice(), " ")
			}
			return searchHosts(ctx, os.Stdout, c.String("config"), searchParams{
				query:    query,
				pages:    c.Int("pages"),
				perPage:  c.Int("per-page"),
				proxyURL: c.String("proxy-url"),
				json:     c.Bool("json"),
			})
		},
	}
}

type searchParams struct {
	query    string
	pages    int
	perPage  int
	proxyURL string
	json     bool
}

// searchHosts runs one search and follows up to pages-1 next pages.
func searchHosts(ctx context.Context, w io.Writer, configPath string, p searchParams) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if p.proxyURL != "" {
		cfg.Client.ProxyURL = p.proxyURL
	}
	if p.perPage > 0 {
		cfg.Client.PerPage = p.perPage
	}

	st, err := collectPages(ctx, search.NewSession(newProxyClient(cfg), search.WithSearchOptions(searchOptions(cfg))), p.query, p.pages)
	if err != nil {
		return err
	}

	if p.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(hosts.SearchResponse{
			Results:       st.Results,
			NextPageToken: st.PageToken,
			Total:         st.Total,
		})
	}
	renderResults(w, st)
	return nil
}

func collectPages(ctx context.Context, sess *search.Session, query string, pages int) (search.State, error) {
	defer sess.Close()

	if err := sess.Search(ctx, query); err != nil {
		return search.State{}, fmt.Errorf("searching: %w", err)
	}
	for page := 1; page < pages && sess.State().HasMoreResults; page++ {
		if err := sess.LoadMore(ctx); err != nil {
			return search.State{}, fmt.Errorf("loading page %d: %w", page+1, err)
		}
	}
	return sess.State(), nil
}
