// wavesim 无界面批量运行波次模拟
//
// 每一局使用脚本化玩家（AutoPilot）在固定时长内对抗波次导演，
// 多局并行运行，结束后输出每局统计和汇总。
//
// 用法：
//
//	go run ./cmd/wavesim -runs 8 -duration 300 -seed 42
//	go run ./cmd/wavesim -config data/simulation.yaml -verbose
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strings"

	"github.com/gonewx/horde/pkg/config"
	"github.com/gonewx/horde/pkg/events"
	"github.com/gonewx/horde/pkg/game"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const tickRate = 60

// runResult 一局的结果
type runResult struct {
	ID       uuid.UUID
	Seed     int64
	Seconds  float64
	Stats    game.SessionStats
	Wave     int
	Cycle    int
	Shots    int
	Finished bool
}

func main() {
	runs := flag.Int("runs", 4, "Number of simulation runs")
	seed := flag.Int64("seed", 1, "Base random seed (run i uses seed+i)")
	duration := flag.Float64("duration", 300, "Simulated seconds per run")
	configPath := flag.String("config", "", "Simulation config file (empty = built-in defaults)")
	workers := flag.Int("workers", runtime.NumCPU(), "Maximum parallel runs")
	damage := flag.Float64("damage", 2, "AutoPilot damage per shot")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg := config.DefaultSimulationConfig()
	if *configPath != "" {
		loaded, err := config.LoadSimulationConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *runs < 1 || *duration <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -runs must be >= 1 and -duration must be positive")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results := make([]runResult, *runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)

	for i := 0; i < *runs; i++ {
		g.Go(func() error {
			r, err := simulate(gctx, cfg, *seed+int64(i), *duration, *damage, *verbose)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printReport(os.Stdout, results)
}

// simulate 运行一局
// 每局拥有独立的 Session 和 AutoPilot，只在自己的 goroutine 中访问
func simulate(ctx context.Context, cfg *config.SimulationConfig, seed int64, duration, damage float64, verbose bool) (runResult, error) {
	res := runResult{ID: uuid.New(), Seed: seed}

	pilot := game.NewAutoPilot()
	pilot.Damage = damage

	s := game.NewSession(cfg, seed, game.NewRectMapFromConfig(cfg), pilot)
	s.SetVerbose(verbose)
	s.Start()
	log.Printf("[wavesim] Run %s started (seed=%d)", res.ID, seed)

	const dt = 1.0 / tickRate
	ticks := int(duration * tickRate)
	for t := 0; t < ticks; t++ {
		if t%tickRate == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		pilot.Step(s, dt)
		s.Tick(dt)
		s.DrainEvents()
	}

	p := s.Progress()
	res.Seconds = s.Now()
	res.Stats = s.Stats()
	res.Wave = p.WaveNumber
	res.Cycle = p.Cycle
	res.Shots = pilot.Shots()
	res.Finished = true
	log.Printf("[wavesim] Run %s finished: wave=%d cycle=%d", res.ID, res.Wave, res.Cycle)
	return res, nil
}

// printReport 输出每局结果和汇总
func printReport(w io.Writer, results []runResult) {
	fmt.Fprintln(w, "=== Wave Simulation Report ===")
	fmt.Fprintf(w, "%-36s %8s %6s %6s %8s %8s %8s %6s\n",
		"Run", "Seed", "Wave", "Cycle", "Spawned", "Defeated", "PlayerHP", "Bosses")
	fmt.Fprintln(w, strings.Repeat("-", 96))

	var totalSpawned, totalDefeated, totalBosses int
	var totalDamage float64
	reasons := make(map[events.DefeatReason]int)

	for _, r := range results {
		if !r.Finished {
			continue
		}
		st := r.Stats
		fmt.Fprintf(w, "%-36s %8d %6d %6d %8d %8d %8.1f %6d\n",
			r.ID, r.Seed, r.Wave, r.Cycle, st.Spawned, st.TotalDefeated(), st.PlayerDamage, st.BossesDefeated)

		totalSpawned += st.Spawned
		totalDefeated += st.TotalDefeated()
		totalBosses += st.BossesDefeated
		totalDamage += st.PlayerDamage
		for reason, n := range st.Defeated {
			reasons[reason] += n
		}
	}

	n := float64(len(results))
	fmt.Fprintln(w, strings.Repeat("-", 96))
	fmt.Fprintf(w, "Runs: %d  avg spawned %.1f  avg defeated %.1f  avg player damage %.1f  bosses %d\n",
		len(results), float64(totalSpawned)/n, float64(totalDefeated)/n, totalDamage/n, totalBosses)

	keys := make([]string, 0, len(reasons))
	for k := range reasons {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	fmt.Fprintln(w, "Defeats by reason:")
	for _, k := range keys {
		fmt.Fprintf(w, "  %-10s %d\n", k, reasons[events.DefeatReason(k)])
	}
}
