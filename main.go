package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/0x5844/rigid2d/audio"
	"github.com/0x5844/rigid2d/engine"
	"github.com/0x5844/rigid2d/physics"
	"github.com/0x5844/rigid2d/scene"
	"github.com/0x5844/rigid2d/stream"
	"github.com/0x5844/rigid2d/vector"
	"github.com/0x5844/rigid2d/viewer"
)

// Build information (set by build script)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

// ==================== CLI CONFIGURATION ====================

type Config struct {
	// Simulation parameters
	GravityX    float64
	GravityY    float64
	FPS         int
	Duration    float64
	Damp        float64
	AngularDamp float64

	// Scene settings
	SceneFile   string
	SceneType   string
	BodiesCount int
	Seed        int64

	// Rest detection
	RestThreshold float64
	StopAtRest    bool

	// Consumers
	Listen string
	View   bool
	Audio  bool

	// Output settings
	Verbose       bool
	Quiet         bool
	StatsInterval float64
	ProfileCPU    string
	ProfileMem    string
}

func parseFlags() *Config {
	config := &Config{}
	defaults := physics.DefaultConfig()

	// Simulation parameters
	flag.Float64Var(&config.GravityX, "gravity-x", defaults.Gravity.X, "gravity X component")
	flag.Float64Var(&config.GravityY, "gravity-y", defaults.Gravity.Y, "gravity Y component (+Y points down)")
	flag.IntVar(&config.FPS, "fps", 60, "steps per second")
	flag.Float64Var(&config.Duration, "duration", 0, "simulation duration in seconds (0 = infinite)")
	flag.Float64Var(&config.Damp, "damp", defaults.Damp, "velocity damping applied after each contact, in (0, 1]")
	flag.Float64Var(&config.AngularDamp, "angular-damp", defaults.AngularDamp, "angular velocity damping applied after each contact, in (0, 1]")

	// Scene settings
	flag.StringVar(&config.SceneFile, "scene", "", "JSON scene file to load")
	flag.StringVar(&config.SceneType, "scene-type", "default", "generated scene type ("+strings.Join(scene.Kinds(), ", ")+")")
	flag.IntVar(&config.BodiesCount, "bodies", 100, "number of bodies for generated scenes")
	flag.Int64Var(&config.Seed, "seed", 1, "random seed for generated scenes")

	// Rest detection
	flag.Float64Var(&config.RestThreshold, "rest-threshold", physics.DefaultRestThreshold, "seconds a body must stay still to count as resting")
	flag.BoolVar(&config.StopAtRest, "stop-at-rest", false, "stop once every dynamic body is resting")

	// Consumers
	flag.StringVar(&config.Listen, "listen", "", "serve websocket frames on this address, e.g. :8080")
	flag.BoolVar(&config.View, "view", false, "draw the simulation in the terminal")
	flag.BoolVar(&config.Audio, "audio", false, "play a sound on collisions")

	// Output settings
	flag.BoolVar(&config.Verbose, "verbose", false, "verbose output")
	flag.BoolVar(&config.Quiet, "quiet", false, "minimal output")
	flag.Float64Var(&config.StatsInterval, "stats-interval", 2.0, "statistics reporting interval")
	flag.StringVar(&config.ProfileCPU, "profile-cpu", "", "CPU profile output file")
	flag.StringVar(&config.ProfileMem, "profile-mem", "", "memory profile output file")

	// Version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "show version information")

	// Custom usage
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "rigid2d - deterministic 2D rigid-body simulator\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -bodies 50 -scene-type pyramid -view\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -scene scene.json -duration 10 -listen :8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -scene-type stack -stop-at-rest -profile-cpu cpu.prof\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nVersion: %s\n", Version)
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("rigid2d version %s\n", Version)
		fmt.Printf("Built: %s\n", BuildTime)
		fmt.Printf("Go: %s\n", GoVersion)
		os.Exit(0)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return config
}

func validateConfig(config *Config) error {
	if config.FPS < 1 || config.FPS > 1000 {
		return fmt.Errorf("fps must be between 1 and 1000")
	}
	if config.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	if config.BodiesCount < 1 {
		return fmt.Errorf("bodies count must be at least 1")
	}
	if config.RestThreshold <= 0 {
		return fmt.Errorf("rest threshold must be positive")
	}
	if config.StatsInterval <= 0 {
		return fmt.Errorf("stats interval must be positive")
	}
	if config.Quiet && config.Verbose {
		return fmt.Errorf("quiet and verbose are mutually exclusive")
	}
	if math.IsNaN(config.GravityX) || math.IsNaN(config.GravityY) {
		return fmt.Errorf("gravity must be a number")
	}
	if err := config.worldConfig().Validate(); err != nil {
		return err
	}

	if config.SceneFile == "" {
		valid := false
		for _, kind := range scene.Kinds() {
			if config.SceneType == kind {
				valid = true
			}
		}
		if !valid {
			return fmt.Errorf("invalid scene type: %s", config.SceneType)
		}
	}

	return nil
}

func (config *Config) worldConfig() physics.Config {
	return physics.Config{
		Gravity:     vector.NewVector2D(config.GravityX, config.GravityY),
		Damp:        config.Damp,
		AngularDamp: config.AngularDamp,
	}
}

// ==================== SCENE SETUP ====================

// loadScene reads the scene file or generates one, builds it into a new
// world and returns both.
func loadScene(config *Config) (*scene.Scene, *physics.World, error) {
	var (
		sc  *scene.Scene
		err error
	)
	if config.SceneFile != "" {
		sc, err = scene.LoadSceneFromFile(config.SceneFile)
	} else {
		sc, err = scene.Generate(config.SceneType, config.BodiesCount, config.Seed)
	}
	if err != nil {
		return nil, nil, err
	}

	world, err := physics.NewWorldWithConfig(sc.WorldConfig(config.worldConfig()))
	if err != nil {
		return nil, nil, err
	}
	if _, err := sc.Build(world); err != nil {
		return nil, nil, fmt.Errorf("build scene: %w", err)
	}
	return sc, world, nil
}

// ==================== MAIN APPLICATION ====================

func main() {
	// Parse command line flags
	config := parseFlags()

	// Set up logging; the terminal viewer owns the screen
	if config.Quiet || config.View {
		log.SetOutput(io.Discard)
	} else if config.Verbose {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	// Set up profiling
	if config.ProfileCPU != "" {
		f, err := os.Create(config.ProfileCPU)
		if err != nil {
			log.Fatal("Could not create CPU profile:", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("Could not start CPU profile:", err)
		}
		defer pprof.StopCPUProfile()
	}

	log.Printf("Starting rigid2d v%s", Version)

	// Load or generate scene
	sc, world, err := loadScene(config)
	if err != nil {
		log.Fatalf("Failed to set up scene: %v", err)
	}
	if sc.Duration > 0 {
		config.Duration = sc.Duration
	}
	if config.SceneFile != "" {
		log.Printf("Loaded scene from %s (%d bodies, %d joints)", config.SceneFile, world.BodyCount(), len(world.Joints()))
	} else {
		log.Printf("Generated %s scene with %d bodies (seed %d)", config.SceneType, world.BodyCount(), config.Seed)
	}

	// Create the engine
	eng := engine.New(world, engine.Options{
		FPS:           config.FPS,
		RestThreshold: config.RestThreshold,
		StopAtRest:    config.StopAtRest,
	})

	// Create context for simulation control
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up duration limit
	if config.Duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(config.Duration*float64(time.Second)))
		defer cancel()
	}

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Attach consumers
	if config.Listen != "" {
		hub := stream.NewHub(stream.Options{Version: Version, FPS: config.FPS})
		eng.AddListener(hub)
		hub.OnStep(eng.Last())
		go func() {
			if err := hub.ListenAndServe(ctx, config.Listen); err != nil {
				log.Printf("Websocket server stopped: %v", err)
				cancel()
			}
		}()
	}

	if config.Audio {
		cues := audio.NewCues(audio.DefaultOptions())
		if err := cues.Initialize(); err != nil {
			// Non-fatal, the simulation can run without sound
			log.Printf("Audio initialization failed: %v", err)
		} else {
			defer cues.Cleanup()
		}
		eng.AddListener(cues)
	}

	var view *viewer.Viewer
	if config.View {
		view, err = viewer.NewTerminal()
		if err != nil {
			log.Fatalf("Failed to open terminal: %v", err)
		}
		eng.AddListener(view)
		go func() {
			if err := view.Run(ctx); err == nil {
				cancel()
			}
		}()
	}

	if config.Verbose {
		eng.AddListener(engine.ListenerFunc(logCollisions))
	}

	// Start statistics reporting
	if !config.Quiet {
		go reportStats(ctx, eng, config.StatsInterval, config.Verbose)
	}

	// Handle shutdown
	go func() {
		select {
		case <-sigChan:
			log.Println("Shutting down gracefully...")
			cancel()
		case <-ctx.Done():
			// Context finished naturally
		}
	}()

	// Run the physics simulation
	log.Printf("Simulation started (FPS: %d, gravity: %v)", config.FPS, world.Gravity)
	if config.Duration > 0 {
		log.Printf("Simulation duration: %.2f seconds", config.Duration)
	} else if !config.View {
		log.Println("Press Ctrl+C to stop")
	}

	runErr := eng.Run(ctx)
	cancel()

	if view != nil {
		view.Close()
		if !config.Quiet {
			log.SetOutput(os.Stderr)
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		log.Fatalf("Engine error: %v", runErr)
	}

	// Memory profiling
	if config.ProfileMem != "" {
		f, err := os.Create(config.ProfileMem)
		if err != nil {
			log.Printf("Could not create memory profile: %v", err)
		} else {
			defer f.Close()
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Printf("Could not write memory profile: %v", err)
			}
		}
	}

	// Final statistics
	stats := eng.Stats()
	log.Printf("Simulation completed:")
	log.Printf("  Steps: %d (%.2f simulated seconds)", stats.Steps, stats.SimTime)
	log.Printf("  Bodies: %d (%d dynamic, %d resting)", stats.Bodies, stats.Dynamic, stats.Resting)
	log.Printf("  Collisions: %d", stats.Collisions)
	log.Printf("  Frame time: avg %.3fms, min %.3fms, max %.3fms", stats.AvgFrameTime, stats.MinFrameTime, stats.MaxFrameTime)
	if stats.AtRest {
		log.Printf("  World came to rest")
	}
}

func logCollisions(s engine.Snapshot) {
	for _, c := range s.Collisions {
		if c.PassThrough {
			log.Printf("step %d: body %d passes through %d", s.Step, c.A, c.B)
			continue
		}
		log.Printf("step %d: body %d hit %d, depth %.3f at %v", s.Step, c.A, c.B, c.Depth, c.Point)
	}
}

func reportStats(ctx context.Context, eng *engine.Engine, interval float64, verbose bool) {
	ticker := time.NewTicker(time.Duration(interval * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := eng.Stats()
			log.Printf("FPS: %.1f | Steps: %d | Bodies: %d | Resting: %d/%d | Collisions: %d",
				stats.FPS, stats.Steps, stats.Bodies, stats.Resting, stats.Dynamic, stats.LastCollisions)
			if verbose {
				log.Printf("Frame time: avg %.3fms, recent %.3fms, min %.3fms, max %.3fms | Sim time: %.2fs",
					stats.AvgFrameTime, stats.RecentFrameTime, stats.MinFrameTime, stats.MaxFrameTime, stats.SimTime)
			}
		case <-ctx.Done():
			return
		}
	}
}
