package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rpggio/tracespace/internal/mockdata"
	"github.com/spf13/cobra"
)

const defaultMockPath = "visualization/data/latest.json"

func newMockCmd() *cobra.Command {
	var (
		out  string
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Write a mock snapshot for running without the pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == 0 {
				seed = rand.Uint64()
			}
			rng := rand.New(rand.NewPCG(seed, seed))
			snap := mockdata.Generate(rng, mockdata.Posts, time.Now())
			if err := mockdata.Write(out, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d organisms to %s\n", snap.OrganismCount(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", defaultMockPath, "Output file")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (0 picks one)")
	return cmd
}
