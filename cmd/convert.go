package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/netcas/splitter/splitter/bwtable"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Bandwidth calibration table utilities",
}

var (
	tableConvertSrcYAML string
	tableConvertDstBolt string
)

var tableConvertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a YAML bandwidth table into a bbolt database for fast lookups",
	Run: func(cmd *cobra.Command, args []string) {
		if err := bwtable.ConvertYAMLToBolt(tableConvertSrcYAML, tableConvertDstBolt); err != nil {
			logrus.Fatalf("table convert failed: %v", err)
		}
		logrus.Infof("wrote %s", tableConvertDstBolt)
	},
}

func init() {
	tableConvertCmd.Flags().StringVar(&tableConvertSrcYAML, "src", "", "Path to the source YAML bandwidth table")
	tableConvertCmd.Flags().StringVar(&tableConvertDstBolt, "dst", "", "Path to write the bbolt database")
	_ = tableConvertCmd.MarkFlagRequired("src")
	_ = tableConvertCmd.MarkFlagRequired("dst")

	tableCmd.AddCommand(tableConvertCmd)
	rootCmd.AddCommand(tableCmd)
}
