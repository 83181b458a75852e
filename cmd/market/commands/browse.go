package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stockmarket/internal/api/client"
	"github.com/wonny/stockmarket/internal/api/handlers"
	"github.com/wonny/stockmarket/pkg/httputil"
	"github.com/wonny/stockmarket/pkg/logger"
)

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Page through a running market",
	Long: `Opens a viewing session on a running server and reads commands from
stdin:

  n, next      - next page (wraps to the first)
  p, previous  - previous page (wraps to the last)
  r, refresh   - reprint the current page
  q, quit      - close the session and exit

Example:
  go run ./cmd/market browse --server http://localhost:8089`,
	RunE: runBrowse,
}

var (
	browseServer  string
	browseTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(browseCmd)

	// Flags
	browseCmd.Flags().StringVar(&browseServer, "server", "http://localhost:8089", "market server URL")
	browseCmd.Flags().DurationVar(&browseTimeout, "timeout", 10*time.Second, "request timeout")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	log := logger.Nop()
	if verbose {
		log = logger.NewWithWriter(cmd.ErrOrStderr(), "development")
	}

	api := client.New(browseServer, httputil.NewWithTimeout(log, browseTimeout), log)
	return browse(cmd.Context(), api, cmd.InOrStdin(), cmd.OutOrStdout())
}

// browse runs the read-command loop until quit or end of input
func browse(ctx context.Context, api *client.Client, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	page, err := api.CreateSession(ctx)
	if err != nil {
		return err
	}
	sessionID := page.Session
	defer func() {
		if err := api.CloseSession(context.Background(), sessionID); err != nil {
			PrintWarning(out, err.Error())
		}
	}()

	printRemotePage(out, page)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "[n]ext [p]revious [r]efresh [q]uit > ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "next":
			page, err = api.Next(ctx, sessionID)
		case "p", "previous", "prev":
			page, err = api.Previous(ctx, sessionID)
		case "r", "refresh", "":
			page, err = api.Page(ctx, sessionID)
		case "q", "quit", "exit":
			return nil
		default:
			PrintWarning(out, "unknown command")
			continue
		}
		if err != nil {
			return err
		}

		printRemotePage(out, page)
	}
}

func printRemotePage(out io.Writer, page handlers.PageResponse) {
	PrintHeader(out, "Session "+page.Session, page.Now)
	PrintPage(out, page.Index, page.Count, page.Slots)
}
