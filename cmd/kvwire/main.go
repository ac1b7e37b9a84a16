// kvwire inspects and filters kvwire line streams.
//
// Usage:
//
//	kvwire [global flags] cat [--format lines|yaml] [file]
//	kvwire [global flags] pipe [--drop key]... [--stop-at line] [--baud n]
//
// cat loads a stream from a file or stdin and prints its fields sorted by
// key. pipe copies stdin to stdout line by line, dropping the named keys and
// stopping at the marker line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/MikhailWahib/kvwire/internal/config"
	"github.com/MikhailWahib/kvwire/internal/dto"
	"github.com/MikhailWahib/kvwire/internal/iochan"
	"github.com/MikhailWahib/kvwire/internal/logging"
	"github.com/MikhailWahib/kvwire/internal/memstream"
	"github.com/MikhailWahib/kvwire/internal/stream"
	"github.com/MikhailWahib/kvwire/internal/wire"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type globals struct {
	configPath  string
	logLevel    string
	bufferBytes int
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var g globals
	flagSet := pflag.NewFlagSet("kvwire", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&g.configPath, "config", "", "TOML or YAML config file")
	flagSet.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	flagSet.IntVar(&g.bufferBytes, "buffer-bytes", 0, "line buffer size in bytes (overrides config)")
	flagSet.Usage = func() { printHelp(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(stderr, flagSet)
		return errors.New("missing command")
	}

	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, cfg, g.logLevel)
	m := stream.NewManager(cfg, logger)

	switch rest[0] {
	case "cat":
		return runCat(rest[1:], m, stdin, stdout, stderr)
	case "pipe":
		return runPipe(ctx, rest[1:], m, stdin, stdout, stderr)
	default:
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

func loadConfig(g globals) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if g.configPath != "" {
		loaded, err := config.LoadFile(g.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if g.bufferBytes > 0 {
		cfg.BufferBytes = g.bufferBytes
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config, override string) *slog.Logger {
	opts := logging.DefaultOptions()
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
		opts.Level = lvl
	}
	logging.ApplyEnv(&opts)
	if lvl, ok := logging.ParseLevel(override); ok {
		opts.Level = lvl
	}
	if _, isFile := w.(*os.File); !isFile {
		opts.NoColor = true
	}
	return logging.New(w, opts)
}

// catView is the yaml shape printed by cat.
type catView struct {
	Type      *int16            `yaml:"type,omitempty"`
	MinCompat *uint8            `yaml:"min_compat_version,omitempty"`
	Fields    map[string]string `yaml:"fields"`
}

func runCat(args []string, m *stream.Manager, stdin io.Reader, stdout, stderr io.Writer) error {
	var format string
	flagSet := pflag.NewFlagSet("cat", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&format, "format", "f", "lines", "output format: lines or yaml")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if format != "lines" && format != "yaml" {
		return fmt.Errorf("unknown format %q", format)
	}

	in := stdin
	switch flagSet.NArg() {
	case 0:
	case 1:
		f, err := os.Open(flagSet.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	default:
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(1))
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	rec, meta, err := loadAny(m, memstream.NewSource(data))
	if err != nil {
		return err
	}

	var view catView
	if rec.Version().Typed() {
		view.Type, view.MinCompat = &meta.TypeID, &meta.MinCompatVersion
	}
	view.Fields = make(map[string]string, rec.Store().Len())
	for k, v := range rec.Store().All() {
		view.Fields[k.String()] = v.String()
	}

	if format == "yaml" {
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	}

	if view.Type != nil {
		fmt.Fprintln(stdout, wire.FormatHeader(meta))
	}
	keys := make([]string, 0, len(view.Fields))
	for k := range view.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintln(stdout, wire.FormatLine(k, view.Fields[k]))
	}
	return nil
}

// anyType accepts whatever type id the header names, at any version.
type anyType struct {
	dto.Object
	id int16
}

func (a *anyType) Version() dto.Version {
	return dto.Version{TypeID: a.id, SerialVersion: 255}
}

// loadAny loads src as a generic record, retrying as an arbitrary typed
// record when the stream carries a header.
func loadAny(m *stream.Manager, src *memstream.Buffer) (dto.Record, wire.Meta, error) {
	obj := m.NewObject()
	err := m.Load(src, obj)
	if !errors.Is(err, dto.ErrTypeMismatch) {
		return obj, wire.Meta{}, err
	}

	src.Reset()
	meta, _ := firstHeader(m, src)
	src.Reset()
	rec, err := m.LoadAs(src, stream.MapperFunc(func(typeID int16) dto.Record {
		return &anyType{Object: *dto.NewObject(m.Config().TableOptions()), id: typeID}
	}))
	return rec, meta, err
}

func firstHeader(m *stream.Manager, src *memstream.Buffer) (wire.Meta, bool) {
	for {
		line, _, err := m.ReadLine(src)
		if err != nil {
			return wire.Meta{}, false
		}
		if line != "" {
			return wire.ParseHeader(line)
		}
	}
}

func runPipe(ctx context.Context, args []string, m *stream.Manager, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		drop   []string
		stopAt string
		baud   int
	)
	flagSet := pflag.NewFlagSet("pipe", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringArrayVar(&drop, "drop", nil, "drop data lines with this key (repeatable)")
	flagSet.StringVar(&stopAt, "stop-at", "", "stop at this line without forwarding it")
	flagSet.IntVar(&baud, "baud", 0, "throttle output to this serial baud rate")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	src := iochan.NewReader(stdin)
	dest := iochan.NewWriter(stdout, iochan.WithBaud(baud))
	return m.Pipe(ctx, src, dest, pipeFilter(drop, stopAt))
}

func pipeFilter(drop []string, stopAt string) stream.Filter {
	if len(drop) == 0 && stopAt == "" {
		return nil
	}
	forward := stream.DropKeys(drop...)
	return func(line string, dest *stream.Destination) bool {
		if stopAt != "" && line == stopAt {
			return false
		}
		return forward(line, dest)
	}
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `kvwire inspects and filters kvwire line streams.

Usage:
  kvwire [global flags] cat [--format lines|yaml] [file]
  kvwire [global flags] pipe [--drop key]... [--stop-at line] [--baud n]

Global flags:
%s`, flagSet.FlagUsages())
}
