// Command voxphase builds phase grids from voxel files and filters point
// clouds against them.
//
//	voxphase gen -out ./demo
//	voxphase info ./demo/phases.vox
//	voxphase filter -voxels ./demo/phases.vox -points ./demo/points.xyz -phase 2 -count
//	voxphase snapshot -voxels s3://bucket/run7/phases.vox -out s3://bucket/run7/grid.vxg
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/natefinch/lumberjack"

	"github.com/hupe1980/voxphase"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "gen":
		err = genCmd(ctx, os.Args[2:])
	case "info":
		err = infoCmd(ctx, os.Args[2:])
	case "filter":
		err = filterCmd(ctx, os.Args[2:])
	case "snapshot":
		err = snapshotCmd(ctx, os.Args[2:])
	case "help", "-h", "-help", "--help":
		usage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "voxphase:", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage: voxphase <command> [flags]

commands:
  gen       write a synthetic voxel file and point file
  info      list the sections of a voxel file and summarize its grid
  filter    stream the indices of points in a phase
  snapshot  build a grid and store it as a snapshot

Locations are local paths, s3://bucket/key or minio://host:port/bucket/key.`)
}

// common holds the flags shared by every command that loads a grid.
type common struct {
	configPath string
	logLevel   string
	logFile    string
	logJSON    bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML config file")
	fs.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&c.logFile, "log-file", "", "write logs to a rotating file instead of stderr")
	fs.BoolVar(&c.logJSON, "log-json", false, "log as JSON")
}

// load resolves the config file and flag overrides.
func (c *common) load() (voxphase.Config, error) {
	cfg := voxphase.DefaultConfig()
	if c.configPath != "" {
		var err error
		if cfg, err = voxphase.LoadConfigFile(c.configPath); err != nil {
			return cfg, err
		}
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.logFile != "" {
		cfg.Log.File = c.logFile
	}
	if c.logJSON {
		cfg.Log.Format = "json"
	}
	return cfg, cfg.Validate()
}

// newLogger writes to stderr, or to a size-rotated file when configured.
func newLogger(lc voxphase.LogConfig) (*voxphase.Logger, io.Closer, error) {
	level, err := lc.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	if lc.File == "" {
		return voxphase.NewWriterLogger(os.Stderr, lc.Format, level), io.NopCloser(nil), nil
	}
	out := &lumberjack.Logger{
		Filename:   lc.File,
		MaxSize:    lc.MaxSizeMB, // megabytes
		MaxBackups: lc.MaxBackups,
		MaxAge:     lc.MaxAgeDays, // days
		Compress:   lc.Compress,
	}
	return voxphase.NewWriterLogger(out, lc.Format, level), out, nil
}

// newAnalysis builds an Analysis from the resolved config.
func newAnalysis(cfg voxphase.Config) (*voxphase.Analysis, *voxphase.Logger, io.Closer, error) {
	logger, closer, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		_ = closer.Close()
		return nil, nil, nil, err
	}
	opts = append(opts, voxphase.WithLogger(logger))
	return voxphase.New(opts...), logger, closer, nil
}
