package main

import (
	"github.com/spf13/cobra"

	"github.com/sequana/fbfilter/internal/stats"
)

func newStatsCmd(a *app) *cobra.Command {
	var tf *thresholdFlags

	cmd := &cobra.Command{
		Use:   "stats [options] <input-file>",
		Short: "Summarize the variants accepted by a filter",
		Long: `Filter variants with the same thresholds as the filter command and print
depth, frequency, strand balance and quality distributions of the accepted
variants, their snpEff impacts, and an allele frequency histogram.`,
		Example: `  fbfilter stats calls.vcf.gz
  fbfilter stats --min-depth 10 calls.vcf`,
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

			return stats.Summarize(res).Write(cmd.OutOrStdout())
		},
	}

	tf = addThresholdFlags(cmd)
	return cmd
}
