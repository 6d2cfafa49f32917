// Command lacedemo seeds a lace.Runtime with a burst of synthetic
// tasks and reports how long the partition takes to drain them. It
// exists to exercise NewRuntime's config surface from the command
// line, not as a benchmark harness.
package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/go-foundations/lace"
)

var (
	cfgFile string

	numWorkers  int
	numTasks    int
	taskLatency time.Duration
	strategy    string
	maxSteal    int
	victimCheck bool
	lastVictim  bool
	debugTD     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lacedemo",
	Short: "Run a synthetic workload on the lace scheduler",
	RunE:  runDemo,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./lacedemo.yaml)")
	flags.IntVar(&numWorkers, "workers", 8, "number of workers in the partition")
	flags.IntVar(&numTasks, "tasks", 1000, "number of tasks to seed at the root")
	flags.DurationVar(&taskLatency, "task-latency", 0, "simulated per-task work duration")
	flags.StringVar(&strategy, "strategy", "one", "steal strategy: one, half, or adaptive")
	flags.IntVar(&maxSteal, "max-steal", 1, "outstanding steal requests per worker")
	flags.BoolVar(&victimCheck, "victim-check", false, "consult the LikelyHasTasks advisory flag")
	flags.BoolVar(&lastVictim, "last-victim", false, "bias toward the last successful victim")
	flags.BoolVar(&debugTD, "debug-termination", false, "trace the termination protocol")

	viper.BindPFlags(flags)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lacedemo")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("LACEDEMO")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func runDemo(cmd *cobra.Command, args []string) error {
	strat, err := parseStrategy(viper.GetString("strategy"))
	if err != nil {
		return err
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	rt := lace.NewRuntime(viper.GetInt("workers"), nil, nil, logger,
		lace.WithStealStrategy(strat),
		lace.WithMaxSteal(viper.GetInt("max-steal")),
		lace.WithVictimCheck(viper.GetBool("victim-check")),
		lace.WithStealLastVictim(viper.GetBool("last-victim")),
		lace.WithDebugTD(viper.GetBool("debug-termination")),
	)

	latency := viper.GetDuration("task-latency")
	n := viper.GetInt("tasks")

	var executed int64
	for i := 0; i < n; i++ {
		rt.Submit(0, lace.Task{Fn: func(ctx context.Context) {
			if latency > 0 {
				time.Sleep(latency)
			}
			atomic.AddInt64(&executed, 1)
		}})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Printf("lacedemo: %d workers, %d tasks, strategy=%s\n", rt.NumWorkers(), n, strategy)

	start := time.Now()
	if err := rt.Run(ctx); err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("executed %d/%d tasks in %v (%.0f tasks/sec)\n",
		atomic.LoadInt64(&executed), n, elapsed, float64(n)/elapsed.Seconds())
	return nil
}

func parseStrategy(s string) (lace.StealStrategy, error) {
	switch s {
	case "one":
		return lace.StealOne, nil
	case "half":
		return lace.StealHalf, nil
	case "adaptive":
		return lace.StealAdaptive, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q: want one, half, or adaptive", s)
	}
}
