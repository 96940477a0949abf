package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"scholar-graph/graph"
	"scholar-graph/services"
	"scholar-graph/storage"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export the default graph to S3",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := env()
		if err != nil {
			return err
		}
		defer logger.Sync()
		if !cfg.S3Enabled() {
			return errors.New("S3 is not configured (S3_URL, S3_BUCKET, S3_KEY, S3_SECRET)")
		}

		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		objects, err := storage.NewS3(cfg)
		if err != nil {
			return err
		}
		policy := graph.SignificancePolicy{
			SmallGraphThreshold: cfg.GraphSmallThreshold,
			MinConnectivity:     cfg.GraphMinConnectivity,
		}
		graphs := services.NewGraphService(st, policy, logger)
		res, err := services.NewSnapshotService(graphs, objects, cfg.SnapshotPrefix, cfg.BackupKeep, logger).Export(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d nodes, %d edges to %s\n", res.Nodes, res.Edges, res.URL)
		return nil
	},
}
