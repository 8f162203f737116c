// Profiling:
// go build ./profile
// ./profile iterate --mode cpu
// go tool pprof -http=":8000" -nodefraction=0.001 ./profile cpu.pprof

package main

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rounds   int
	iters    int
	entities int
	mode     string
)

var rootCmd = &cobra.Command{
	Use:           "profile",
	Short:         "Profile kizuna workloads",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// workload wraps run in a profiled subcommand.
func workload(use, short string, run func(rounds, iters, entities int) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opt func(*profile.Profile)
			switch mode {
			case "cpu":
				opt = profile.CPUProfile
			case "mem":
				opt = profile.MemProfileAllocs
			default:
				return fmt.Errorf("unknown profile mode %q", mode)
			}
			p := profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook)
			defer p.Stop()
			return run(rounds, iters, entities)
		},
	}
}

func init() {
	rootCmd.PersistentFlags().IntVar(&rounds, "rounds", 10, "number of fresh worlds")
	rootCmd.PersistentFlags().IntVar(&iters, "iters", 1000, "iterations per world")
	rootCmd.PersistentFlags().IntVar(&entities, "entities", 1000, "entities per iteration")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "mem", "profile mode: cpu or mem")

	rootCmd.AddCommand(
		workload("spawn", "Spawn and despawn entities through static bundles", runSpawn),
		workload("batch", "Spawn batches and clear the world", runBatch),
		workload("build", "Spawn entities through the dynamic builder", runBuild),
		workload("iterate", "Iterate a populated world with a typed query", runIterate),
		workload("clone", "Clone a populated world in both modes", runClone),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		l, logErr := zap.NewDevelopment()
		if logErr != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
		os.Exit(1)
	}
}
