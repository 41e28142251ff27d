package main

import (
	"flag"
	"log"
	"time"

	"github.com/gonewx/horde/pkg/app"
	"github.com/gonewx/horde/pkg/config"
	"github.com/gonewx/horde/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	seed := flag.Int64("seed", 0, "Random seed (0 = current time)")
	configPath := flag.String("config", config.DefaultSimulationConfigPath, "Simulation config file")
	flag.Parse()

	embedded.Init(dataFS)

	simCfg, err := config.LoadSimulationConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load simulation config: %v", err)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	a, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		Seed:       *seed,
		Simulation: simCfg,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	ebiten.SetWindowSize(app.WindowWidth, app.WindowHeight)
	ebiten.SetWindowTitle("Horde - 波次模拟调试器")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(a); err != nil {
		log.Fatal(err)
	}
}
