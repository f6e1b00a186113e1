// Package main provides the collo CLI: train the heat-equation solver
// and export predictions.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"

	"github.com/collo-ml/collo/internal/autodiff"
	"github.com/collo-ml/collo/internal/backend/cpu"
	"github.com/collo-ml/collo/internal/pinn"
	"github.com/collo-ml/collo/internal/sample"
	"github.com/collo-ml/collo/internal/train"
)

const version = "v0.1.0"

// solverBackend is the production stack: CPU compute wrapped in the
// autodiff decorator.
type solverBackend = *autodiff.Backend[*cpu.Backend]

type fileConfig struct {
	Network struct {
		HiddenWidth int    `yaml:"hidden_width"`
		HiddenDepth int    `yaml:"hidden_depth"`
		Seed        uint64 `yaml:"seed"`
	} `yaml:"network"`
	Sample struct {
		Nf   int     `yaml:"nf"`
		N0   int     `yaml:"n0"`
		Nb   int     `yaml:"nb"`
		T    float64 `yaml:"t"`
		Seed uint64  `yaml:"seed"`
	} `yaml:"sample"`
	Train struct {
		MaxIterations     int     `yaml:"max_iterations"`
		MaxEvaluations    int     `yaml:"max_evaluations"`
		GradientTolerance float64 `yaml:"gradient_tolerance"`
		LossTolerance     float64 `yaml:"loss_tolerance"`
		LogEvery          int     `yaml:"log_every"`
		CheckpointPath    string  `yaml:"checkpoint_path"`
		CheckpointEvery   int     `yaml:"checkpoint_every"`
	} `yaml:"train"`
	Output struct {
		Predictions string `yaml:"predictions"`
		GridX       int    `yaml:"grid_x"`
		GridT       int    `yaml:"grid_t"`
	} `yaml:"output"`
}

func defaultFileConfig() fileConfig {
	var c fileConfig
	net := pinn.DefaultConfig()
	c.Network.HiddenWidth = net.HiddenWidth
	c.Network.HiddenDepth = net.HiddenDepth
	c.Network.Seed = net.Seed

	smp := sample.DefaultConfig()
	c.Sample.Nf = smp.Nf
	c.Sample.N0 = smp.N0
	c.Sample.Nb = smp.Nb
	c.Sample.T = smp.T
	c.Sample.Seed = smp.Seed

	trn := train.DefaultConfig()
	c.Train.MaxIterations = trn.MaxIterations
	c.Train.MaxEvaluations = trn.MaxEvaluations
	c.Train.GradientTolerance = trn.GradientTolerance
	c.Train.LossTolerance = trn.LossTolerance
	c.Train.LogEvery = trn.LogEvery
	c.Train.CheckpointEvery = trn.CheckpointEvery

	c.Output.GridX = 101
	c.Output.GridT = 11
	return c
}

func loadConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func main() {
	klog.InitFlags(nil)

	var configFile string

	root := &cobra.Command{
		Use:           "collo",
		Short:         "Mesh-free neural solver for the 1-D heat equation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "Train the solver network and export predictions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			return runTrain(cfg)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("collo %s\n", version)
		},
	}

	root.AddCommand(trainCmd, versionCmd)

	if err := root.Execute(); err != nil {
		klog.Errorf("%v", err)
		os.Exit(1)
	}
}

func runTrain(cfg fileConfig) error {
	sets, err := sample.New(sample.Config{
		Nf:   cfg.Sample.Nf,
		N0:   cfg.Sample.N0,
		Nb:   cfg.Sample.Nb,
		T:    cfg.Sample.T,
		Seed: cfg.Sample.Seed,
	})
	if err != nil {
		return err
	}
	klog.Infof("sampled %d collocation, %d initial, %d boundary points",
		len(sets.Xf), len(sets.X0), len(sets.Tb))

	backend := autodiff.New(cpu.New())

	network := pinn.NewNetwork(pinn.Config{
		HiddenWidth: cfg.Network.HiddenWidth,
		HiddenDepth: cfg.Network.HiddenDepth,
		Seed:        cfg.Network.Seed,
	}, backend)

	assembler, err := pinn.NewLossAssembler[solverBackend](network, pinn.Data{
		Xf: sets.Xf, Tf: sets.Tf,
		X0: sets.X0, U0: sets.U0,
		Tb: sets.Tb, Xn: sets.Xn,
	}, backend)
	if err != nil {
		return err
	}

	evaluator := train.NewEvaluator(assembler, network.Parameters(), backend, cfg.Train.LogEvery)
	driver := train.NewDriver(evaluator, train.Config{
		MaxIterations:     cfg.Train.MaxIterations,
		MaxEvaluations:    cfg.Train.MaxEvaluations,
		GradientTolerance: cfg.Train.GradientTolerance,
		LossTolerance:     cfg.Train.LossTolerance,
		LogEvery:          cfg.Train.LogEvery,
		CheckpointPath:    cfg.Train.CheckpointPath,
		CheckpointEvery:   cfg.Train.CheckpointEvery,
	})

	result, err := driver.Run()
	if err != nil {
		return err
	}
	fmt.Printf("state=%s loss=%.6e iterations=%d evaluations=%d\n",
		result.State, result.Loss, result.Iterations, result.Evals)

	if cfg.Output.Predictions != "" {
		if err := writePredictions(cfg.Output.Predictions, network, cfg.Output.GridX, cfg.Output.GridT, cfg.Sample.T); err != nil {
			return err
		}
		klog.Infof("wrote predictions to %s", cfg.Output.Predictions)
	}
	return nil
}

// writePredictions evaluates the trained network on a regular grid and
// writes x,t,u rows. The grid is for inspection only; training itself
// never uses one.
func writePredictions(path string, network *pinn.Network[solverBackend], gridX, gridT int, tMax float64) error {
	if gridX < 2 || gridT < 2 {
		return fmt.Errorf("prediction grid must be at least 2x2, got %dx%d", gridX, gridT)
	}

	xs := make([]float64, 0, gridX*gridT)
	ts := make([]float64, 0, gridX*gridT)
	for j := 0; j < gridT; j++ {
		t := tMax * float64(j) / float64(gridT-1)
		for i := 0; i < gridX; i++ {
			xs = append(xs, float64(i)/float64(gridX-1))
			ts = append(ts, t)
		}
	}

	us, err := network.Predict(xs, ts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"x", "t", "u"}); err != nil {
		return err
	}
	for i := range us {
		row := []string{
			strconv.FormatFloat(xs[i], 'g', -1, 64),
			strconv.FormatFloat(ts[i], 'g', -1, 64),
			strconv.FormatFloat(us[i], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
