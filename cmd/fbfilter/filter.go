package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sequana/fbfilter/internal/duckdb"
	"github.com/sequana/fbfilter/internal/filter"
)

// thresholdFlags holds the threshold flags shared by filter and stats.
type thresholdFlags struct {
	file string
}

// flagName maps a threshold key to its command-line flag (min_depth -> min-depth).
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func addThresholdFlags(cmd *cobra.Command) *thresholdFlags {
	tf := &thresholdFlags{}
	flags := cmd.Flags()
	flags.Float64(flagName(filter.KeyFreebayesScore), 0, "Minimum freebayes QUAL (inclusive)")
	flags.Float64(flagName(filter.KeyFrequency), 0, "Minimum first-allele frequency AO/DP (inclusive)")
	flags.Int(flagName(filter.KeyMinDepth), 0, "Depth DP must exceed this value")
	flags.Int(flagName(filter.KeyForwardDepth), 0, "Forward depth SRF+SAF must exceed this value")
	flags.Int(flagName(filter.KeyReverseDepth), 0, "Reverse depth SRR+SAR must exceed this value")
	flags.Float64(flagName(filter.KeyStrandRatio), 0, "Minimum first-allele strand balance (inclusive)")
	flags.StringVar(&tf.file, "thresholds", "", "YAML file of thresholds (keys: "+strings.Join(filter.Keys, ", ")+")")
	return tf
}

// resolve builds the threshold override for one run. Precedence, lowest
// first: config file, thresholds file, environment, flags.
func (tf *thresholdFlags) resolve(a *app, cmd *cobra.Command) (map[string]any, error) {
	if tf.file != "" {
		thresholds, err := readThresholds(tf.file)
		if err != nil {
			return nil, err
		}
		if err := a.v.MergeConfigMap(map[string]any{"filter": thresholds}); err != nil {
			return nil, fmt.Errorf("merge thresholds: %w", err)
		}
	}

	override := make(map[string]any, len(filter.Keys))
	for _, key := range filter.Keys {
		vkey := "filter." + key
		if err := a.v.BindPFlag(vkey, cmd.Flags().Lookup(flagName(key))); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", key, err)
		}
		override[key] = a.v.Get(vkey)
	}
	return override, nil
}

// readThresholds loads a YAML mapping of threshold keys.
func readThresholds(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read thresholds: %w", err)
	}
	var thresholds map[string]any
	if err := yaml.Unmarshal(data, &thresholds); err != nil {
		return nil, fmt.Errorf("parse thresholds %s: %w", path, err)
	}
	return thresholds, nil
}

// runFilter opens input and applies the resolved thresholds.
func runFilter(a *app, input string, override map[string]any) (*filter.Result, error) {
	engine, err := filter.Open(input)
	if err != nil {
		return nil, err
	}
	defer engine.Close()
	engine.SetLogger(a.logger)

	return engine.Filter(override)
}

func newFilterCmd(a *app) *cobra.Command {
	var (
		csvPath    string
		vcfPath    string
		duckdbPath string
		tf         *thresholdFlags
	)

	cmd := &cobra.Command{
		Use:   "filter [options] <input-file>",
		Short: "Filter variants and export the accepted ones",
		Long: `Filter freebayes variants with quality thresholds.

Thresholds come from the "filter" section of the config file, an optional
--thresholds YAML file, FBFILTER_FILTER_<KEY> environment variables and the
flags below, in increasing order of precedence. The CSV table is written to
stdout unless another output is requested.`,
		Example: `  fbfilter filter --min-depth 10 --frequency 0.8 calls.vcf.gz
  fbfilter filter --thresholds strict.yaml --csv out.csv --vcf out.vcf.gz calls.vcf
  cat calls.vcf | fbfilter filter --duckdb runs.duckdb -`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override, err := tf.resolve(a, cmd)
			if err != nil {
				return err
			}

			res, err := runFilter(a, args[0], override)
			if err != nil {
				return err
			}

			if csvPath == "" && vcfPath == "" && duckdbPath == "" {
				csvPath = "-"
			}
			if csvPath != "" {
				if err := res.WriteTableFile(csvPath); err != nil {
					return err
				}
			}
			if vcfPath != "" {
				if err := res.WriteRecordsFile(vcfPath); err != nil {
					return err
				}
			}
			if duckdbPath != "" {
				store, err := duckdb.Open(duckdbPath)
				if err != nil {
					return err
				}
				defer store.Close()

				runID, err := store.WriteResult(cmd.Context(), res)
				if err != nil {
					return fmt.Errorf("store result: %w", err)
				}
				a.logger.Info("stored filter run",
					zap.String("run_id", runID),
					zap.String("database", duckdbPath),
					zap.Int("variants", res.Len()))
			}
			return nil
		},
	}

	tf = addThresholdFlags(cmd)
	flags := cmd.Flags()
	flags.StringVar(&csvPath, "csv", "", "CSV output file ('-' for stdout)")
	flags.StringVar(&vcfPath, "vcf", "", "VCF output file of accepted records (BGZF when ending in .gz)")
	flags.StringVar(&duckdbPath, "duckdb", "", "DuckDB database to store the run in")

	return cmd
}
