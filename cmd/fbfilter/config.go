package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sequana/fbfilter/internal/filter"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage fbfilter configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/" + configName + ".yaml.",
		Example: `  fbfilter config                            # show all config
  fbfilter config set filter.min_depth 10    # default depth threshold
  fbfilter config get filter.min_depth       # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := a.v.AllSettings()
			if len(settings) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "# No configuration set. Config file: ~/%s.yaml\n", configName)
				return nil
			}

			out, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("marshaling config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.AddCommand(newConfigSetCmd(a))
	cmd.AddCommand(newConfigGetCmd(a))

	return cmd
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			parsed, err := parseConfigValue(key, value)
			if err != nil {
				return &usageError{err}
			}
			a.v.Set(key, parsed)

			cfgFile, err := a.configPath()
			if err != nil {
				return err
			}
			if err := a.v.WriteConfigAs(cfgFile); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, cfgFile)
			return nil
		},
	}
}

func newConfigGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			val := a.v.Get(args[0])
			if val == nil {
				return fmt.Errorf("key %q is not set", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		},
	}
}

// parseConfigValue validates filter.<key> thresholds and stores them as
// numbers. Other keys are kept as strings.
func parseConfigValue(key, value string) (any, error) {
	name, ok := strings.CutPrefix(key, "filter.")
	if !ok {
		return value, nil
	}
	if !slices.Contains(filter.Keys, name) {
		return nil, fmt.Errorf("unknown threshold %q (known: %s)", name, strings.Join(filter.Keys, ", "))
	}
	if _, err := filter.DefaultConfig().Merge(map[string]any{name: value}); err != nil {
		return nil, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}
	return strconv.ParseFloat(value, 64)
}
