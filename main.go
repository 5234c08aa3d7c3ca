package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gin-gonic/gin"
	"github.com/hoshinonyaruko/snake-solo/api"
	"github.com/hoshinonyaruko/snake-solo/audio"
	"github.com/hoshinonyaruko/snake-solo/config"
	"github.com/hoshinonyaruko/snake-solo/input"
	"github.com/hoshinonyaruko/snake-solo/loop"
	"github.com/hoshinonyaruko/snake-solo/memimg"
	"github.com/hoshinonyaruko/snake-solo/render"
	"github.com/hoshinonyaruko/snake-solo/sqlite"
	"github.com/hoshinonyaruko/snake-solo/structs"
	"github.com/hoshinonyaruko/snake-solo/term"
)

func main() {
	configPath := flag.String("config", "./config.json", "path to config.json")
	mode := flag.String("mode", "web", "front end: web or term")
	flag.Parse()

	// Initialize the configuration
	cfg := config.LoadConfig(*configPath)
	EnsureFoldersExist(cfg.Assets, "static")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", cfg.DBPath, err)
	}
	defer store.Close()

	// 载入封面到内存，并监听热更新
	canvas := cfg.Size * cfg.Blocksize
	if err := memimg.LoadCover(cfg.Assets, canvas, canvas); err != nil {
		log.Printf("cover: %v", err)
	}
	go func() {
		if err := memimg.WatchCover(cfg.Assets, canvas, canvas, ctx.Done()); err != nil {
			log.Printf("watch %s: %v", cfg.Assets, err)
		}
	}()

	var sounds loop.Sounds = audio.Silent{}
	if cfg.Audio {
		sm := audio.NewSoundManager()
		if err := sm.Initialize(); err != nil {
			log.Printf("audio disabled: %v", err)
		} else {
			defer sm.Cleanup()
			sounds = sm
		}
	}

	pending := &input.Pending{}
	scheduler := loop.New(loop.Options{
		Grid:          structs.Grid{Cols: cfg.Size, Rows: cfg.Size},
		StartSpeed:    cfg.StartSpeed,
		SpeedIncrease: cfg.SpeedIncrease,
		WinByLength:   cfg.WinMetric == "length",
	}, pending, store, sounds, rand.New(rand.NewSource(time.Now().UnixNano())), loop.RealClock())

	switch *mode {
	case "term":
		runTerminal(ctx, scheduler, pending)
	case "web":
		runWeb(ctx, cfg, scheduler, pending)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func runWeb(ctx context.Context, cfg *config.AppConfig, scheduler *loop.Scheduler, pending *input.Pending) {
	// 方块大小和端口从配置单例读取
	blockSize := config.GetConfigValue("blocksize").(int)
	port := config.GetConfigValue("port").(string)

	frames := render.New(blockSize, memimg.GetCover)
	scheduler.AddSink(frames)
	go scheduler.Run(ctx)

	router := gin.Default()
	srv := &api.Server{
		Session:     scheduler,
		Frames:      frames,
		Pending:     pending,
		Sensitivity: cfg.Sensitivity,
		SelfPath:    cfg.SelfPath,
	}
	srv.Register(router)

	httpServer := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	// 从配置单例读取端口 监听
	log.Printf("listening on :%s", port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("listen: %v", err)
	}
}

func runTerminal(ctx context.Context, scheduler *loop.Scheduler, pending *input.Pending) {
	// 日志写到终端会弄乱画面
	logFile, err := os.OpenFile("snake.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatalf("Failed to open snake.log: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("Failed to create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("Failed to init screen: %v", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scheduler.AddSink(term.NewView(screen))
	go scheduler.Run(ctx)
	term.Run(ctx, screen, scheduler, pending)
}

// EnsureFoldersExist 检查并创建必需的文件夹
func EnsureFoldersExist(folders ...string) {
	for _, folder := range folders {
		if _, err := os.Stat(folder); os.IsNotExist(err) {
			// 文件夹不存在，尝试创建它
			if err := os.MkdirAll(folder, 0755); err != nil {
				log.Fatalf("Failed to create %s directory: %s", folder, err)
			}
			log.Printf("Created %s directory", folder)
		}
	}
}
