// Package main is beatparser-bench, a thin CLI that decodes an audio
// file and runs it through the beatparser pipeline, printing the
// resulting beats as JSON. It exists to exercise parseBuffer end to end
// outside the library, the way musicd's main.go wires its daemon
// collaborators together.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/austinkregel/beatparser"
	"github.com/austinkregel/beatparser/internal/decode"
	"github.com/austinkregel/beatparser/internal/selector"
)

type cliConfig struct {
	InputPath       string
	ConfigPath      string
	TargetBeats     int
	SelectionMethod string
	Verbose         bool
}

func main() {
	cfg := parseFlags()

	if cfg.Verbose {
		log.Printf("beatparser-bench %s starting...", beatparser.Version())
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func parseFlags() *cliConfig {
	cfg := &cliConfig{}

	flag.StringVar(&cfg.InputPath, "input", "", "path to an audio file (.wav/.mp3/.flac/.ogg/.m4a)")
	flag.StringVar(&cfg.ConfigPath, "config", "", "optional YAML config file overriding beatparser defaults")
	flag.IntVar(&cfg.TargetBeats, "target-beats", 0, "narrow output to at most this many beats (0 = all)")
	flag.StringVar(&cfg.SelectionMethod, "selection-method", "adaptive", "energy|regular|musical|adaptive")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose logging")
	flag.Parse()

	if cfg.InputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: beatparser-bench --input <file> [--target-beats N] [--selection-method method]")
		os.Exit(2)
	}
	return cfg
}

func run(ctx context.Context, cliCfg *cliConfig) error {
	beatCfg := beatparser.DefaultConfig()
	if cliCfg.ConfigPath != "" {
		loaded, err := beatparser.LoadConfigYAML(cliCfg.ConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		beatCfg = loaded
	}

	decoder, err := decode.NewFFmpegDecoder()
	if err != nil {
		return fmt.Errorf("decoder: %w", err)
	}
	defer decoder.Close()

	meta, err := decoder.Metadata(cliCfg.InputPath)
	if err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	channels := meta.Channels
	if channels < 1 {
		channels = 2
	}

	// ffmpeg's "-ar" already resamples to beatCfg.SampleRate (see
	// decoder.Decode below), so that's the rate to tell ParseBuffer about —
	// not meta.SampleRate, the file's native rate, which would make
	// audioprep.Prepare resample the already-resampled samples again.
	samples, decodedChannels, err := decoder.Decode(ctx, cliCfg.InputPath, channels, beatCfg.SampleRate)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	parser, err := beatparser.NewParser(beatCfg)
	if err != nil {
		return fmt.Errorf("new parser: %w", err)
	}

	result, err := parser.ParseBuffer(ctx, samples, decodedChannels, beatCfg.SampleRate, beatparser.ParseOptions{
		TargetBeatCount: cliCfg.TargetBeats,
		SelectionMethod: selector.Method(cliCfg.SelectionMethod),
		Filename:        cliCfg.InputPath,
	})
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
