// dashview prints the tables of a running dashboard server in the terminal.
//
// With --watch it refetches on the given interval until interrupted.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
)

type table struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Headers []string `json:"headers"`
	Rows    []struct {
		Cells []struct {
			Text string `json:"text"`
		} `json:"cells"`
		Placeholder bool `json:"placeholder"`
	} `json:"rows"`
	UpdatedAt time.Time `json:"updated_at"`
}

type uptimeView struct {
	Display string `json:"display"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var server, name string
	var watch time.Duration

	flagSet := pflag.NewFlagSet("dashview", pflag.ContinueOnError)
	flagSet.StringVarP(&server, "server", "s", "http://localhost:8080", "dashboard server base URL")
	flagSet.StringVarP(&name, "table", "t", "", "print only this table (e.g. clients-talking)")
	flagSet.DurationVarP(&watch, "watch", "w", 0, "refresh interval; 0 prints once")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: 10 * time.Second}
	for {
		if err := printOnce(ctx, client, server, name, out); err != nil {
			return err
		}
		if watch <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(watch):
		}
	}
}

func printOnce(ctx context.Context, client *http.Client, server, name string, out io.Writer) error {
	tables, err := fetchTables(ctx, client, server, name)
	if err != nil {
		return err
	}
	var up uptimeView
	if err := getJSON(ctx, client, server, "/api/uptime", &up); err == nil && up.Display != "" {
		fmt.Fprintln(out, up.Display)
	}
	for _, t := range tables {
		render(out, t)
	}
	return nil
}

func fetchTables(ctx context.Context, client *http.Client, server, name string) ([]table, error) {
	if name != "" {
		var t table
		if err := getJSON(ctx, client, server, "/api/tables/"+url.PathEscape(name), &t); err != nil {
			return nil, err
		}
		return []table{t}, nil
	}
	var list struct {
		Items []table `json:"items"`
	}
	if err := getJSON(ctx, client, server, "/api/tables", &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

func getJSON(ctx context.Context, client *http.Client, server, path string, dst any) error {
	endpoint := strings.TrimRight(server, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("get %s: %s: %s", endpoint, resp.Status, apiErr.Error.Message)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func render(out io.Writer, t table) {
	fmt.Fprintf(out, "\n%s\n", t.Title)
	tw := tablewriter.NewWriter(out)
	tw.SetHeader(t.Headers)
	tw.SetAutoWrapText(false)
	for _, row := range t.Rows {
		if row.Placeholder {
			text := ""
			if len(row.Cells) > 0 {
				text = row.Cells[0].Text
			}
			tw.SetCaption(true, text)
			continue
		}
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			cells = append(cells, c.Text)
		}
		tw.Append(cells)
	}
	tw.Render()
}
