package main

import (
	"fmt"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/parleychat/parley/pkg/app"
)

// program adapts the application loop to the service manager contract.
type program struct {
	configPath string
	errCh      chan error
}

func (p *program) Start(service.Service) error {
	p.errCh = make(chan error, 1)
	go func() {
		p.errCh <- app.Run(app.RunParams{
			ConfigPath: p.configPath,
			Version:    version,
			Commit:     commit,
			Date:       date,
		})
	}()
	return nil
}

func (p *program) Stop(service.Service) error {
	return nil
}

func newService(cmd *cobra.Command) (service.Service, error) {
	cfgPath, _ := cmd.Flags().GetString("config")

	svcConfig := &service.Config{
		Name:        "parley",
		DisplayName: "Parley",
		Description: "Self-hosted chat client for LLM providers",
		Arguments:   []string{"service", "run"},
	}
	if cfgPath != "" {
		svcConfig.Arguments = append(svcConfig.Arguments, "--config", cfgPath)
	}
	return service.New(&program{configPath: cfgPath}, svcConfig)
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage parley as a system service",
	}
	cmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")

	actions := []struct {
		use   string
		short string
		run   func(service.Service) error
	}{
		{"install", "Install the system service", service.Service.Install},
		{"uninstall", "Remove the system service", service.Service.Uninstall},
		{"start", "Start the installed service", service.Service.Start},
		{"stop", "Stop the installed service", service.Service.Stop},
		{"run", "Run under the service manager (used by the manager itself)", service.Service.Run},
	}
	for _, a := range actions {
		action := a
		cmd.AddCommand(&cobra.Command{
			Use:   action.use,
			Short: action.short,
			RunE: func(c *cobra.Command, _ []string) error {
				svc, err := newService(c)
				if err != nil {
					return err
				}
				if err := action.run(svc); err != nil {
					return err
				}
				if action.use != "run" {
					fmt.Printf("Service %s: OK\n", action.use)
				}
				return nil
			},
		})
	}
	return cmd
}
