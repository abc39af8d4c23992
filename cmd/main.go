package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"

	"github.com/lmittmann/tint"

	"sidamp/pkg/analysis"
	"sidamp/pkg/device"
	"sidamp/pkg/fit"
	"sidamp/pkg/plot"
	"sidamp/pkg/refdata"
	"sidamp/pkg/util"
)

func init() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: "15:04:05",
		}),
	))
}

func parseChip(n int) (refdata.Chip, error) {
	switch n {
	case 6581:
		return refdata.Chip6581, nil
	case 8580:
		return refdata.Chip8580, nil
	default:
		return 0, fmt.Errorf("chip %d: %w", n, refdata.ErrUnknownChip)
	}
}

func parseModel(name string) (device.ModelKind, error) {
	switch name {
	case "quadratic":
		return device.Quadratic, nil
	case "ekv":
		return device.EKV, nil
	default:
		return 0, fmt.Errorf("unknown model %q (want quadratic or ekv)", name)
	}
}

func runSweep(chip refdata.Chip, kind device.ModelKind) ([]fit.Sample, error) {
	preset, err := refdata.PresetFor(chip, kind)
	if err != nil {
		return nil, err
	}

	sweep := analysis.NewTransferSweep(preset.Input, preset.Output,
		preset.SweepStart, preset.SweepStop, preset.SweepStep, preset.Seed)
	if err := sweep.Setup(); err != nil {
		return nil, err
	}
	if err := sweep.Execute(); err != nil {
		return nil, err
	}

	printSweepResults(sweep.GetResults())
	for _, f := range sweep.Failures() {
		slog.Warn("sweep point skipped", "Vin", f.Vin, "err", f.Err)
	}

	curve := make([]fit.Sample, 0, len(sweep.Curve()))
	for _, pt := range sweep.Curve() {
		curve = append(curve, fit.Sample{Vin: pt.Vin, Vout: pt.Vout})
	}
	return curve, nil
}

func printSweepResults(results map[string][]float64) {
	sweep, ok := results["SWEEP1"]
	if !ok {
		return
	}

	fmt.Printf("\nTransfer Curve (%d points):\n", len(sweep))
	fmt.Println("Vin          Vx           Vout         Iter")
	fmt.Println("--------------------------------------------")
	vx := results["V(x)"]
	vo := results["V(out)"]
	iter := results["ITER"]
	for i := range sweep {
		fmt.Printf("%-12s %-12s %-12s %.0f\n",
			util.FormatValueFactor(sweep[i], "V"),
			util.FormatValueFactor(vx[i], "V"),
			util.FormatValueFactor(vo[i], "V"),
			iter[i])
	}
}

func runFit(ctx context.Context, chip refdata.Chip, trials int, seed int64, refine bool) (fit.Parameters, error) {
	reference, err := refdata.ByChip(chip)
	if err != nil {
		return fit.Parameters{}, err
	}
	start, err := refdata.InitialParams(chip)
	if err != nil {
		return fit.Parameters{}, err
	}

	cfg := fit.DefaultConfig()
	cfg.MaxTrials = trials
	cfg.Rand = rand.New(rand.NewSource(seed))
	cfg.Progress = func(p fit.Parameters, score float64) {
		slog.Info("improved", "score", util.FormatScore(score))
	}

	result, err := fit.Optimize(ctx, reference, start, cfg)
	if err != nil {
		return fit.Parameters{}, err
	}
	slog.Info("search finished",
		"status", result.Status, "trials", result.Trials,
		"score", util.FormatScore(result.Score))

	params, score := result.Params, result.Score
	if refine {
		params, score, err = fit.Refine(reference, params)
		if err != nil {
			return fit.Parameters{}, err
		}
		slog.Info("refined", "score", util.FormatScore(score))
	}

	fmt.Printf("\nBest parameters (score %s):\n%s\n", util.FormatScore(score), params)
	return params, nil
}

func main() {
	chipFlag := flag.Int("chip", 6581, "chip revision (6581 or 8580)")
	modelFlag := flag.String("model", "quadratic", "device model: quadratic or ekv")
	sweepFlag := flag.Bool("sweep", false, "solve the transfer curve from the circuit")
	fitFlag := flag.Bool("fit", false, "fit logistic parameters to the measured table")
	refineFlag := flag.Bool("refine", false, "polish the fit with Levenberg-Marquardt")
	trialsFlag := flag.Int("trials", 100000, "optimizer trial budget")
	seedFlag := flag.Int64("seed", 1, "optimizer random seed")
	plotFlag := flag.String("plot", "", "write curve comparison PNG to this path")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	chip, err := parseChip(*chipFlag)
	if err != nil {
		slog.Error("bad chip", "err", err)
		os.Exit(1)
	}
	kind, err := parseModel(*modelFlag)
	if err != nil {
		slog.Error("bad model", "err", err)
		os.Exit(1)
	}

	if !*sweepFlag && !*fitFlag {
		*fitFlag = true
	}

	curves := make(map[string][]fit.Sample)

	if *sweepFlag {
		curve, err := runSweep(chip, kind)
		if err != nil {
			slog.Error("sweep failed", "err", err)
			os.Exit(1)
		}
		curves["solved "+kind.String()] = curve
	}

	if *fitFlag {
		params, err := runFit(ctx, chip, *trialsFlag, *seedFlag, *refineFlag)
		if err != nil {
			slog.Error("fit failed", "err", err)
			os.Exit(1)
		}

		if *plotFlag != "" {
			reference, _ := refdata.ByChip(chip)
			model, _ := fit.NewModel(reference)
			fitted := make([]fit.Sample, 0, len(reference))
			for _, ref := range reference {
				if sim, err := model.Simulate(params, ref.Vin); err == nil {
					fitted = append(fitted, fit.Sample{Vin: ref.Vin, Vout: sim})
				}
			}
			curves["fitted"] = fitted
		}
	}

	if *plotFlag != "" {
		reference, _ := refdata.ByChip(chip)
		title := fmt.Sprintf("SID %d op-amp transfer", chip)
		if err := plot.TransferPNG(*plotFlag, title, reference, curves); err != nil {
			slog.Error("plot failed", "err", err)
			os.Exit(1)
		}
		slog.Info("plot written", "path", *plotFlag)
	}
}
