package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// dataClient talks to a running parley instance over its HTTP API.
type dataClient struct {
	base  string
	token string
	http  *http.Client
}

func newDataClient(cmd *cobra.Command) *dataClient {
	addr, _ := cmd.Flags().GetString("addr")
	token, _ := cmd.Flags().GetString("token")
	return &dataClient{
		base:  strings.TrimRight(addr, "/"),
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *dataClient) do(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer func() { _ = resp.Body.Close() }()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().String("addr", "http://127.0.0.1:8080", "Base URL of the running parley instance")
	cmd.Flags().String("token", "", "Bearer token if the gateway requires authentication")
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Download all sessions and settings as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newDataClient(cmd).do(http.MethodGet, "/api/export", nil)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			var out io.Writer = os.Stdout
			if len(args) == 1 {
				f, err := os.OpenFile(args[0], os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			if _, err := io.Copy(out, resp.Body); err != nil {
				return err
			}
			if len(args) == 1 {
				fmt.Fprintf(os.Stderr, "Exported to %s\n", args[0])
			}
			return nil
		},
	}
	addDataFlags(cmd)
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore sessions and settings from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			resp, err := newDataClient(cmd).do(http.MethodPost, "/api/import", f)
			if err != nil {
				return err
			}
			_ = resp.Body.Close()

			fmt.Fprintf(os.Stderr, "Imported %s\n", args[0])
			return nil
		},
	}
	addDataFlags(cmd)
	return cmd
}
