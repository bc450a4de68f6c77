package handlers

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/buildfleet/buildfleet/internal/config"
	"github.com/buildfleet/buildfleet/internal/fleet"
)

// Status prints the managed instance count per cloud and agent pool.
func Status(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	cloudsByName := make(map[string]*config.CloudConfig, len(cfg.Clouds))
	for i := range cfg.Clouds {
		cloudsByName[cfg.Clouds[i].Name] = &cfg.Clouds[i]
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLOUD\tPOOL\tINSTANCES\tMAX")

	for _, mc := range reg.ManagedClouds() {
		servers, err := mc.Client().ListInstances(ctx)
		if err != nil {
			return fmt.Errorf("cloud %s: %w", mc.Name(), err)
		}
		instances := fleet.FromServers(servers)

		for _, ac := range cloudsByName[mc.Name()].AgentConfigs() {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n",
				mc.Name(), ac.NamePrefix, fleet.CountForConfig(ac, instances), ac.MaxInstances)
		}
	}

	return w.Flush()
}
