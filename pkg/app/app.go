// Package app 提供波次模拟的 ebiten 调试界面
//
// 该包把 Session 包装成 ebiten.Game：键盘控制玩家、逐帧推进模拟、
// 以简单几何图形绘制敌人、Boss 竞技场和 HUD。
// 桌面端通过 main.go 调用 NewApp()。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"math"

	"github.com/gonewx/horde/pkg/components"
	"github.com/gonewx/horde/pkg/config"
	"github.com/gonewx/horde/pkg/events"
	"github.com/gonewx/horde/pkg/game"
	"github.com/gonewx/horde/pkg/systems"
	"github.com/gonewx/horde/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	// WindowWidth 逻辑屏幕宽度
	WindowWidth = 1280
	// WindowHeight 逻辑屏幕高度
	WindowHeight = 720

	playerSpeed   = 240.0 // 世界单位/秒
	playerRadius  = 12
	maxEventLines = 8
)

var (
	colorBackground = color.RGBA{R: 24, G: 28, B: 36, A: 255}
	colorGrid       = color.RGBA{R: 40, G: 46, B: 58, A: 255}
	colorBounds     = color.RGBA{R: 120, G: 60, B: 60, A: 255}
	colorPlayer     = color.RGBA{R: 90, G: 200, B: 255, A: 255}
	colorRegular    = color.RGBA{R: 110, G: 190, B: 90, A: 255}
	colorCharger    = color.RGBA{R: 230, G: 160, B: 40, A: 255}
	colorBursting   = color.RGBA{R: 255, G: 230, B: 80, A: 255}
	colorExploder   = color.RGBA{R: 220, G: 70, B: 70, A: 255}
	colorBoss       = color.RGBA{R: 170, G: 90, B: 220, A: 255}
	colorFrozen     = color.RGBA{R: 160, G: 220, B: 255, A: 255}
	colorArena      = color.RGBA{R: 255, G: 80, B: 200, A: 255}
	colorHealthBack = color.RGBA{R: 60, G: 20, B: 20, A: 255}
	colorHealth     = color.RGBA{R: 80, G: 220, B: 80, A: 255}
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Seed 随机种子
	Seed int64
	// Simulation 已校验的模拟配置
	Simulation *config.SimulationConfig
}

// keyboardPlayer 方向键控制的玩家
type keyboardPlayer struct {
	pos         utils.Vec2
	bottom, top float64
}

// Position 实现 game.PlayerLocator
func (p *keyboardPlayer) Position() utils.Vec2 {
	return p.pos
}

func (p *keyboardPlayer) update(dt float64) {
	var dx, dy float64
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dx--
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dx++
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dy--
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dy++
	}
	dir := utils.Vec2{X: dx, Y: dy}.Normalized()
	p.pos = p.pos.Add(dir.Scale(playerSpeed * dt))
	p.pos.Y = math.Max(p.bottom, math.Min(p.top, p.pos.Y))
}

// switchablePlayer 在键盘和脚本化玩家之间切换
type switchablePlayer struct {
	keyboard *keyboardPlayer
	pilot    *game.AutoPilot
	auto     bool
}

func (p *switchablePlayer) Position() utils.Vec2 {
	if p.auto {
		return p.pilot.Position()
	}
	return p.keyboard.Position()
}

// App 调试界面，实现 ebiten.Game 接口
type App struct {
	session *game.Session
	player  *switchablePlayer
	cfg     *config.SimulationConfig
	gameMap *game.RectMap

	eventLog []string
	banner   string
	bannerT  float64

	verbose                  bool
	pendingWindowSizeReset   bool
	windowSizeResetCountdown int
}

// NewApp 创建调试界面
//
// 调用此函数前，必须先调用 embedded.Init() 并加载好模拟配置。
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}
	if cfg.Simulation == nil {
		return nil, fmt.Errorf("simulation config is required")
	}

	sim := cfg.Simulation
	player := &switchablePlayer{
		keyboard: &keyboardPlayer{bottom: sim.Map.Bottom, top: sim.Map.Top},
		pilot:    game.NewAutoPilot(),
	}

	gameMap := game.NewRectMapFromConfig(sim)
	session := game.NewSession(sim, cfg.Seed, gameMap, player)
	session.SetVerbose(cfg.Verbose)
	session.Start()
	log.Printf("[App] Session started (seed=%d)", cfg.Seed)

	a := &App{
		session: session,
		player:  player,
		cfg:     sim,
		gameMap: gameMap,
		verbose: cfg.Verbose,
	}
	a.collectEvents()
	return a, nil
}

// Update 处理输入并推进一帧
func (a *App) Update() error {
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(WindowWidth, WindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if a.session.IsPaused() {
			a.session.Resume()
		} else {
			a.session.Pause()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.session.Reset()
		a.eventLog = nil
		a.banner = ""
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		a.player.auto = !a.player.auto
		log.Printf("[App] AutoPilot: %v", a.player.auto)
	}

	dt := 1.0 / float64(ebiten.TPS())
	if !a.session.IsPaused() {
		if a.player.auto {
			a.player.pilot.Center = a.player.keyboard.pos
			a.player.pilot.Step(a.session, dt)
		} else {
			a.player.keyboard.update(dt)
		}
		a.bannerT -= dt
	}
	a.session.Tick(dt)
	a.collectEvents()
	return nil
}

// collectEvents 取走本帧事件，更新横幅和事件日志
func (a *App) collectEvents() {
	for _, e := range a.session.DrainEvents() {
		switch e.Type {
		case events.WaveStarted:
			if e.IsHorde {
				a.showBanner(fmt.Sprintf("Wave %d - A horde is approaching!", e.WaveNumber))
			} else {
				a.showBanner(fmt.Sprintf("Wave %d", e.WaveNumber))
			}
		case events.NewEnemyTypeIntroduced:
			a.showBanner(fmt.Sprintf("New enemy: %s", e.Kind))
		case events.BossIntroBegan:
			a.showBanner("The boss is coming...")
		case events.CycleEscalated:
			a.showBanner(fmt.Sprintf("Cycle %d: difficulty up!", e.Cycle))
		case events.EnemySpawned:
			// 太频繁，不记入日志
			continue
		}
		a.eventLog = append(a.eventLog, fmt.Sprintf("%6.1fs %s", e.Time, e))
	}
	if n := len(a.eventLog); n > maxEventLines {
		a.eventLog = a.eventLog[n-maxEventLines:]
	}
}

func (a *App) showBanner(text string) {
	a.banner = text
	a.bannerT = 2.5
}

// Draw 绘制一帧
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	cam := a.player.Position().Sub(utils.Vec2{X: WindowWidth / 2, Y: WindowHeight / 2})
	a.drawGrid(screen, cam)
	a.drawBounds(screen, cam)

	if arena, ok := a.session.ArenaBounds(); ok {
		r := arena.Translate(cam.Scale(-1))
		vector.StrokeRect(screen, float32(r.Min.X), float32(r.Min.Y),
			float32(r.Width()), float32(r.Height()), 3, colorArena, false)
	}

	for _, e := range a.session.Enemies() {
		a.drawEnemy(screen, cam, e)
	}
	if boss, ok := a.session.Boss(); ok {
		a.drawEnemy(screen, cam, boss)
	}

	p := a.player.Position().Sub(cam)
	vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), playerRadius, colorPlayer, true)

	a.drawHUD(screen)
}

func (a *App) drawGrid(screen *ebiten.Image, cam utils.Vec2) {
	const step = 100.0
	startX := -positiveMod(cam.X, step)
	for x := startX; x < WindowWidth; x += step {
		vector.StrokeLine(screen, float32(x), 0, float32(x), WindowHeight, 1, colorGrid, false)
	}
	startY := -positiveMod(cam.Y, step)
	for y := startY; y < WindowHeight; y += step {
		vector.StrokeLine(screen, 0, float32(y), WindowWidth, float32(y), 1, colorGrid, false)
	}
}

func positiveMod(v, m float64) float64 {
	r := math.Mod(v, m)
	if r < 0 {
		r += m
	}
	return r
}

// drawBounds 地图纵向边界和障碍物
func (a *App) drawBounds(screen *ebiten.Image, cam utils.Vec2) {
	bottom, top := a.gameMap.VerticalBounds()
	for _, y := range []float64{bottom, top} {
		sy := float32(y - cam.Y)
		if sy >= 0 && sy <= WindowHeight {
			vector.StrokeLine(screen, 0, sy, WindowWidth, sy, 2, colorBounds, false)
		}
	}
	for _, o := range a.gameMap.Obstacles() {
		r := o.Translate(cam.Scale(-1))
		if r.Max.X < 0 || r.Max.Y < 0 || r.Min.X > WindowWidth || r.Min.Y > WindowHeight {
			continue
		}
		vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y),
			float32(r.Width()), float32(r.Height()), colorBounds, false)
	}
}

func (a *App) drawEnemy(screen *ebiten.Image, cam utils.Vec2, e systems.EnemyView) {
	r := utils.RectFromCenter(e.Position.Sub(cam), e.Footprint)
	if r.Max.X < 0 || r.Max.Y < 0 || r.Min.X > WindowWidth || r.Min.Y > WindowHeight {
		return
	}

	x, y := float32(r.Min.X), float32(r.Min.Y)
	w, h := float32(r.Width()), float32(r.Height())

	var fill color.Color
	switch e.Kind {
	case components.EnemyKindCharger:
		fill = colorCharger
		if e.IsBursting {
			fill = colorBursting
		}
	case components.EnemyKindExploder:
		fill = colorExploder
	case components.EnemyKindBoss:
		fill = colorBoss
	default:
		fill = colorRegular
	}

	if e.Kind == components.EnemyKindExploder {
		c := e.Position.Sub(cam)
		vector.DrawFilledCircle(screen, float32(c.X), float32(c.Y), w/2, fill, true)
		if e.IsCharging() {
			rng := float32(a.cfg.Enemies.Exploder.ExplosionRange)
			vector.StrokeCircle(screen, float32(c.X), float32(c.Y), rng, 2, colorExploder, true)
		}
	} else {
		vector.DrawFilledRect(screen, x, y, w, h, fill, false)
	}
	if e.IsFrozen {
		vector.StrokeRect(screen, x-2, y-2, w+4, h+4, 2, colorFrozen, false)
	}

	if e.MaxHealth > 0 && e.Health < e.MaxHealth {
		ratio := float32(e.Health / e.MaxHealth)
		vector.DrawFilledRect(screen, x, y-6, w, 3, colorHealthBack, false)
		vector.DrawFilledRect(screen, x, y-6, w*ratio, 3, colorHealth, false)
	}
}

func (a *App) drawHUD(screen *ebiten.Image) {
	p := a.session.Progress()
	st := a.session.Stats()
	ds := a.session.DirectorState()

	mode := "keyboard"
	if a.player.auto {
		mode = "autopilot"
	}
	status := ""
	if a.session.IsPaused() {
		status = "  [PAUSED]"
	}

	hud := fmt.Sprintf(
		"Wave %d  Cycle %d  Phase %s%s\n%s\nTime %.1fs  Seed %d  Player %s\n"+
			"Stats: health=%.1f speed=%.2f boss=%.1f grace=%.1fs\n"+
			"Spawned %d  Defeated %d  Player hits %d (%.1f dmg)  Bosses %d\n"+
			"[Arrows] move  [A] autopilot  [P] pause  [R] reset  [F11] fullscreen",
		p.WaveNumber, p.Cycle, p.Phase, status,
		p.Text,
		a.session.Now(), a.session.Seed(), mode,
		ds.Stats.ZombieHealth, ds.Stats.ZombieSpeed, ds.Stats.WizardHealth, ds.GracePeriod,
		st.Spawned, st.TotalDefeated(), st.PlayerHits, st.PlayerDamage, st.BossesDefeated,
	)
	ebitenutil.DebugPrintAt(screen, hud, 10, 10)

	for i, line := range a.eventLog {
		ebitenutil.DebugPrintAt(screen, line, 10, WindowHeight-20-16*(len(a.eventLog)-1-i))
	}

	if a.banner != "" && a.bannerT > 0 {
		ebitenutil.DebugPrintAt(screen, a.banner, WindowWidth/2-len(a.banner)*3, WindowHeight/3)
	}
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return WindowWidth, WindowHeight
}

// Session 当前模拟（测试和工具使用）
func (a *App) Session() *game.Session {
	return a.session
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
