package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go-ml.dev/pkg/cvtrain/config"
	"go-ml.dev/pkg/cvtrain/fold"
	"go-ml.dev/pkg/cvtrain/fu"
	"go-ml.dev/pkg/cvtrain/model"
	"go-ml.dev/pkg/cvtrain/results"
	"go-ml.dev/pkg/cvtrain/tables"
)

func newRootCmd() *cobra.Command {
	var (
		modelName  string
		foldIndex  int
		configPath string
	)
	cmd := &cobra.Command{
		Use:           "cvtrain",
		Short:         "Train and evaluate a model on every cross-validation fold",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var folds []int
			if cmd.Flags().Changed("fold") {
				folds = []int{foldIndex}
			}
			return run(cmd.OutOrStdout(), configPath, modelName, folds)
		},
	}
	cmd.Flags().StringVar(&modelName, "model", "", "model name: linear_regression, decision_tree, knn, gbm")
	cmd.Flags().IntVar(&foldIndex, "fold", 0, "run only this fold, all configured folds when omitted")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (TOML)")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func run(out io.Writer, configPath, modelName string, folds []int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	kind, err := model.ParseKind(modelName)
	if err != nil {
		return err
	}
	rc, err := cfg.Runner(func(s string) { fmt.Fprintln(out, s) })
	if err != nil {
		return err
	}
	ds, err := tables.ReadCSVFile(cfg.DatasetPath())
	if err != nil {
		return err
	}
	if folds == nil {
		folds = fold.Range(cfg.Data.Folds)
	}

	fits, runErr := fold.New(rc).RunAll(ds, folds, kind)
	if cfg.Results.DB != "" {
		if err = record(out, cfg.Results.DB, kind, fits); err != nil {
			return err
		}
	}
	return runErr
}

// record journals completed folds and prints their summary
func record(out io.Writer, path string, kind model.Kind, fits []*fold.Fit) error {
	l, err := results.Open(path)
	if err != nil {
		return err
	}
	defer l.Close()
	run := results.NewRun()
	for _, f := range fits {
		if err = l.Record(run, kind.String(), f.Result); err != nil {
			return err
		}
	}
	if len(fits) < 2 {
		return nil
	}
	s, err := l.Summary(run)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Run=%v, model=%v, metric=%v, folds=%d, mean_train_error=%v, mean_valid_error=%v\n",
		s.RunID, s.Model, s.Metric, s.Folds, fu.Round(s.Train, 3), fu.Round(s.Valid, 3))
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cvtrain: %v\n", err)
		os.Exit(1)
	}
}
