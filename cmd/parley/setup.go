package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

const configTemplate = `version: "1"

log:
  level: {{ .LogLevel }}

modules:
  gateway.http:
    bind: {{ .Bind }}
{{- if .Token }}
    auth:
      bearer_token: {{ .Token }}
{{- end }}
  storage.sqlite: {}
{{- if .Backups }}
  backup.cron:
    schedule: "0 * * * *"
{{- end }}
`

type setupAnswers struct {
	Bind     string
	Token    string
	LogLevel string
	Backups  bool
}

func setupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Interactively generate a configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("output")
			if out == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				out = filepath.Join(home, ".config", "parley", "parley.yaml")
			}

			answers := setupAnswers{
				Bind:     "127.0.0.1:8080",
				LogLevel: "info",
			}
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Listen address").
						Description("Host and port the HTTP gateway binds to.").
						Value(&answers.Bind),
					huh.NewInput().
						Title("API bearer token").
						Description("Leave empty to serve without authentication (local use only).").
						EchoMode(huh.EchoModePassword).
						Value(&answers.Token),
					huh.NewSelect[string]().
						Title("Log level").
						Options(
							huh.NewOption("info", "info"),
							huh.NewOption("debug", "debug"),
							huh.NewOption("warn", "warn"),
						).
						Value(&answers.LogLevel),
					huh.NewConfirm().
						Title("Enable hourly backups?").
						Value(&answers.Backups),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(out), 0o700); err != nil {
				return err
			}
			f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			tmpl := template.Must(template.New("config").Parse(configTemplate))
			if err := tmpl.Execute(f, answers); err != nil {
				return err
			}

			fmt.Printf("Wrote %s\n", out)
			fmt.Println("Add provider API keys through the settings API once parley is running.")
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Where to write the configuration file")
	return cmd
}
