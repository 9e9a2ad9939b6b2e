// Package main provides an offline CLI that analyses a list of outcomes
// under one or more strategies and prints streaks and statistics.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"roulette-lab/internal/classifier"
	"roulette-lab/internal/config"
	"roulette-lab/internal/domain"
	"roulette-lab/internal/reporting"
	"roulette-lab/internal/sequence"
	"roulette-lab/internal/strategy"
)

// options holds parsed command line flags.
type options struct {
	outcomes        string
	file            string
	direction       string
	strategyNumbers string
	preset          string
	attempts        int
	policy          string
	format          string
	rouletteID      string
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if err := run(opts, os.Stdout, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags parses command line arguments. The direction has no default and must be declared.
func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.StringVar(&opts.outcomes, "outcomes", "", "Outcomes, comma or space separated (e.g. \"5,5,15,10\")")
	fs.StringVar(&opts.file, "file", "", "File with outcomes, one per line or comma separated")
	fs.StringVar(&opts.direction, "direction", "", "Order of the given outcomes: chrono or reverse (required)")
	fs.StringVar(&opts.strategyNumbers, "strategy-numbers", "", "Trigger numbers, comma separated")
	fs.StringVar(&opts.preset, "preset", "", "Trigger preset name ("+strings.Join(strategy.PresetNames(), ", ")+")")
	fs.IntVar(&opts.attempts, "attempts", 3, "Attempts per activation (1..6)")
	fs.StringVar(&opts.policy, "policy", "consuming", "Statistics traversal policy: consuming or independent")
	fs.StringVar(&opts.format, "format", "md", "Output format: md or csv")
	fs.StringVar(&opts.rouletteID, "roulette", "", "Roulette id shown in the report")
	err := fs.Parse(args)
	return opts, err
}

// run analyses the outcomes described by opts and writes the report to w.
func run(opts options, w io.Writer, now time.Time) error {
	raw := opts.outcomes
	if opts.file != "" {
		if raw != "" {
			return errors.New("use either -outcomes or -file, not both")
		}
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return fmt.Errorf("read outcomes: %w", err)
		}
		raw = string(data)
	}

	values, err := parseOutcomes(raw)
	if err != nil {
		return err
	}

	dir := sequence.ParseDirection(opts.direction)
	seq, err := sequence.New(values, dir, sequence.Window{RouletteID: opts.rouletteID, Date: domain.DayLive})
	if err != nil {
		return err
	}

	policy, err := classifier.ParsePolicy(opts.policy)
	if err != nil {
		return err
	}

	strategies, err := selectStrategies(opts.strategyNumbers, opts.preset)
	if err != nil {
		return err
	}

	report, err := reporting.Build(seq, strategies, opts.attempts, policy, now)
	if err != nil {
		return err
	}

	switch opts.format {
	case "md", "markdown":
		_, err = io.WriteString(w, reporting.RenderMarkdown(report))
		return err
	case "csv":
		out, err := reporting.RenderCSV(report)
		if err != nil {
			return fmt.Errorf("render csv: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unknown format %q (want md or csv)", opts.format)
	}
}

// parseOutcomes splits on commas and whitespace.
func parseOutcomes(raw string) ([]int, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return nil, errors.New("no outcomes given (use -outcomes or -file)")
	}

	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("outcome %d: %q is not a number", i, f)
		}
		values[i] = v
	}
	return values, nil
}

// selectStrategies builds the ad-hoc strategy from flags, or falls back to the default set.
func selectStrategies(numbers, preset string) ([]strategy.Strategy, error) {
	if numbers == "" && preset == "" {
		reg, err := strategy.NewRegistryFromConfigs(config.DefaultStrategies())
		if err != nil {
			return nil, err
		}
		return reg.List(), nil
	}

	cfg := domain.StrategyConfig{
		ID:           "custom",
		StrategyType: domain.StrategyTypeFixed,
		Preset:       preset,
	}
	if preset != "" && numbers == "" {
		cfg.ID = preset
	}
	for _, f := range strings.Split(numbers, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("strategy number %q is not a number", f)
		}
		cfg.Numbers = append(cfg.Numbers, v)
	}

	s, err := strategy.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return []strategy.Strategy{s}, nil
}
