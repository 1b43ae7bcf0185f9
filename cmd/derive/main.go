package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/statline-ff/statline/internal/config"
	"github.com/statline-ff/statline/internal/logging"
	"github.com/statline-ff/statline/internal/model"
	"github.com/statline-ff/statline/internal/ranks"
	"github.com/statline-ff/statline/internal/reconcile"
	"github.com/statline-ff/statline/internal/store"
	"github.com/statline-ff/statline/internal/summary"
)

type options struct {
	RawRoot     string
	DerivedRoot string
	SeasonMin   int
	SeasonMax   int
	Formats     []model.Format
	Reconcile   bool
}

func main() {
	var (
		configPath  = flag.String("config", "", "YAML config file for raw/derived roots")
		rawRoot     = flag.String("raw-root", "", "root directory for raw JSON (overrides config)")
		derivedRoot = flag.String("derived-root", "", "root directory for derived JSON (overrides config)")
		seasonMin   = flag.Int("season-min", 0, "first season to bake (0 = oldest available)")
		seasonMax   = flag.Int("season-max", 0, "last season to bake (0 = newest available)")
		formats     = flag.String("formats", "standard,half,ppr", "comma-separated scoring formats")
		reconcileOn = flag.Bool("reconcile", true, "compare provider pts_ppr with computed points and write a report")
		logLevel    = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	cfg, err := config.Read(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	if *rawRoot != "" {
		cfg.RawRoot = *rawRoot
	}
	if *derivedRoot != "" {
		cfg.DerivedRoot = *derivedRoot
	}
	log := logging.New(*logLevel, cfg.LogFormat)

	fs, err := parseFormats(*formats)
	if err != nil {
		log.WithError(err).Fatal("invalid formats")
	}
	opts := options{
		RawRoot:     cfg.RawRoot,
		DerivedRoot: cfg.DerivedRoot,
		SeasonMin:   *seasonMin,
		SeasonMax:   *seasonMax,
		Formats:     fs,
		Reconcile:   *reconcileOn,
	}
	if err := run(opts, logrus.NewEntry(log).WithField("component", "derive")); err != nil {
		log.WithError(err).Error("derive failed")
		os.Exit(1)
	}
	log.Info("done")
}

func run(opts options, log *logrus.Entry) error {
	if opts.DerivedRoot == "" {
		return fmt.Errorf("derived root is required")
	}
	raw := store.NewJSONStore(opts.RawRoot)
	derived := store.NewJSONStore(opts.DerivedRoot)

	players, err := raw.Players()
	if err != nil {
		return err
	}
	positions := make(map[string]model.Position, len(players))
	for _, p := range players {
		positions[p.ID] = p.Position
	}
	log.WithField("players", len(players)).Info("roster loaded")

	seasons, err := raw.Seasons()
	if err != nil {
		return err
	}
	baked := 0
	for _, season := range seasons {
		if opts.SeasonMin > 0 && season < opts.SeasonMin {
			continue
		}
		if opts.SeasonMax > 0 && season > opts.SeasonMax {
			continue
		}
		sl, err := raw.SeasonLog(season)
		if err != nil {
			return err
		}
		for _, f := range opts.Formats {
			t := ranks.Build(sl, positions, f)
			if err := summary.WriteRankSummary(derived, summary.BuildRankSummary(t)); err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"season": season,
				"format": f,
				"scored": len(t.Scored),
			}).Info("rank tables written")
		}
		if opts.Reconcile {
			report := reconcile.BuildReport(sl, positions)
			if err := summary.WriteJSON(derived, reconcile.ReportPath(season), report); err != nil {
				return err
			}
			fields := logrus.Fields{"season": season, "mismatches": len(report.Mismatches), "unknown": len(report.UnknownPlayers)}
			if len(report.Mismatches) > 0 {
				log.WithFields(fields).Warn("reconcile found mismatches")
			} else {
				log.WithFields(fields).Info("reconcile clean")
			}
		}
		baked++
	}
	if baked == 0 {
		log.Warn("no seasons in range")
	}
	return nil
}

func parseFormats(raw string) ([]model.Format, error) {
	out := make([]model.Format, 0, len(model.Formats))
	seen := make(map[model.Format]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		f := model.Format(part)
		switch f {
		case model.Standard, model.Half, model.PPR:
		default:
			return nil, fmt.Errorf("unknown format: %q", part)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no formats given")
	}
	return out, nil
}
