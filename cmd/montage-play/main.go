package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/montage-editor/montage"
	"github.com/montage-editor/montage/audio"
	"github.com/montage-editor/montage/clock"
	"github.com/montage-editor/montage/config"
	"github.com/montage-editor/montage/editor"
	"github.com/montage-editor/montage/loop"
	"github.com/montage-editor/montage/oto"
	"github.com/montage-editor/montage/playback"
	"github.com/montage-editor/montage/rpc"
	"github.com/montage-editor/montage/store"
	"github.com/montage-editor/montage/version"
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, files are placed in the working directory.")
	play := flag.Bool("p", false, "Play the master audio of the input projects (default behaviour when no other output is defined).")
	wavOut := flag.Bool("w", false, "Output the master audio of the work area as a 16-bit .wav file.")
	looping := flag.Bool("l", false, "Loop the work area until interrupted.")
	seek := flag.Float64("s", 0, "Start playing from this position, in seconds.")
	assetDir := flag.String("a", "", "Directory to read assets from. Overrides the config file.")
	assetURL := flag.String("u", "", "Base URL to fetch assets from. Overrides the config file.")
	syncAddr := flag.String("sync", "", "Mirror the playback position to a sync receiver at this host:port.")
	debug := flag.Bool("d", false, "Log debug messages.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if !*wavOut {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the file
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config, using defaults: %v\n", err)
		cfg = config.Default()
	}
	level, err := cfg.LogLevel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if *assetDir != "" {
		cfg.Assets.Dir, cfg.Assets.BaseURL = *assetDir, ""
	} else if *assetURL != "" {
		cfg.Assets.Dir, cfg.Assets.BaseURL = "", *assetURL
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var output *oto.Context
	if *play {
		output, err = oto.NewContext(cfg.Playback.SampleRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not acquire oto AudioContext: %v\n", err)
			os.Exit(1)
		}
		logger.Debug("audio device open", "sampleRate", output.SampleRate())
	}
	var sync chan<- playback.Status
	if *syncAddr != "" {
		sync, err = rpc.Sender(*syncAddr, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not connect to the sync receiver: %v\n", err)
			os.Exit(1)
		}
	}
	var projects store.Store
	if cfg.Projects.Dir != "" {
		projects = &store.FileStore{Dir: cfg.Projects.Dir}
	}
	process := func(filename string) error {
		project, saver, err := load(ctx, projects, filename)
		if err != nil {
			return err
		}
		cache := audio.NewCache(cfg.Fetcher(), logger)
		if *wavOut {
			name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)) + ".wav"
			if err := exportWav(ctx, project, cache, filepath.Join(*directory, name)); err != nil {
				return fmt.Errorf("could not export .wav file: %w", err)
			}
		}
		if *play {
			if err := output.Resume(); err != nil {
				return err
			}
			defer func() {
				if err := output.Suspend(); err != nil {
					logger.Warn("could not suspend audio device", "err", err)
				}
			}()
			return playProject(ctx, project, saver, cache, output, cfg, *seek, *looping, sync, logger)
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		files := []string{param}
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			jsonfiles, _ := filepath.Glob(filepath.Join(param, "*.json"))
			ymlfiles, _ := filepath.Glob(filepath.Join(param, "*.yml"))
			files = append(ymlfiles, jsonfiles...)
		}
		for _, file := range files {
			if err := process(file); err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
				retval = 1
			}
			if ctx.Err() != nil {
				os.Exit(retval)
			}
		}
	}
	os.Exit(retval)
}

// playProject plays p from seek until the end of the work area, or until ctx
// is done when looping. The player and the editor run on one loop; this
// goroutine only polls the state, forwarding it to sync if it is not nil.
func playProject(ctx context.Context, p montage.Project, saver editor.Saver, cache *audio.Cache, output playback.Output, cfg config.Config, seek float64, looping bool, sync chan<- playback.Status, logger *slog.Logger) error {
	l := loop.New()
	go l.Run()
	defer l.Close()
	clk := clock.Real(l.Post)
	model := editor.New(p, editor.Options{
		Clock:           clk,
		HistoryLimit:    cfg.History.Limit,
		HistoryDebounce: cfg.History.Debounce.Std(),
		Saver:           saver,
		AutosaveDelay:   cfg.Autosave.Delay.Std(),
		Logger:          logger,
	})
	player := playback.NewPlayer(model, playback.Options{
		Clock:         clk,
		Output:        output,
		Cache:         cache,
		Dispatch:      l.Post,
		FrameInterval: cfg.FrameInterval(),
		Logger:        logger,
	})
	model.OnChange(func(p montage.Project) { player.SetDuration(p.Duration) })
	l.Call(func() {
		logger.Info("playing", "project", p.Name, "duration", p.Duration, "workArea", fmt.Sprintf("%.3f-%.3f", p.WorkArea.Start, p.WorkArea.End))
		player.Seek(seek)
		if looping {
			player.ToggleLoop()
		}
		player.Toggle()
	})
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Call(func() { player.Close(); model.Close() })
			return nil
		case <-ticker.C:
			var status playback.Status
			l.Call(func() { status = player.Status() })
			if sync != nil {
				loop.TrySend(sync, status)
			}
			if status.State != playback.Playing {
				l.Call(func() { player.Close(); model.Close() })
				return nil
			}
		}
	}
}

// load reads the project at path. A path that is not a file is taken as the
// id of a project in projects, which then also receives the autosaves.
func load(ctx context.Context, projects store.Store, path string) (montage.Project, editor.Saver, error) {
	if _, err := os.Stat(path); err == nil || projects == nil {
		p, err := store.ReadFile(path)
		return p, nil, err
	}
	p, err := projects.Load(ctx, path)
	if err != nil {
		return montage.Project{}, nil, err
	}
	return p, projects, nil
}

func exportWav(ctx context.Context, p montage.Project, cache *audio.Cache, path string) error {
	master := p.MasterTrack()
	if master == nil || len(master.Clips) == 0 {
		return fmt.Errorf("project %q has no master audio", p.Name)
	}
	buf, err := cache.Load(ctx, master.Clips[0].AssetID)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := audio.WriteWav(f, playback.RenderWorkArea(p, buf)); err != nil {
		return err
	}
	return f.Close()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Montage command line utility for playing and exporting the master audio of .yml/.json project files.\nUsage: %s [flags] [path|id ...]\nIds name projects in the projects directory of the config file.\n", os.Args[0])
	flag.PrintDefaults()
}
