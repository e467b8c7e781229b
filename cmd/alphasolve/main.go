// Command alphasolve loads a config file and runs the orchestrator against
// one problem statement.
//
// Usage:
//
//	alphasolve --config alphasolve.yaml --problem "Prove that sqrt(2) is irrational."
//	alphasolve --config alphasolve.yaml --problem-file problem.txt --hint-file hint.txt
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	alphasolve "github.com/alphasolve/alphasolve"
	"github.com/alphasolve/alphasolve/config"
	"github.com/alphasolve/alphasolve/orchestrator"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "alphasolve:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "alphasolve.yaml", "path to the YAML config file")
	problem := flag.String("problem", "", "problem statement")
	problemFile := flag.String("problem-file", "", "path to a file containing the problem statement (overrides --problem)")
	hintFile := flag.String("hint-file", "", "path to a file containing an optional hint")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(alphasolve.GetVersion())
		return nil
	}

	if err := config.LoadEnvFiles(); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	statement, err := resolveProblem(*problem, *problemFile)
	if err != nil {
		return err
	}

	hint, err := readOptionalFile(*hintFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	summary, err := orchestrator.New(cfg).Run(ctx, statement, hint)
	if err != nil {
		return err
	}
	if summary == "" {
		return fmt.Errorf("no verified theorem found within the configured iteration budget")
	}

	fmt.Println(summary)
	return nil
}

func resolveProblem(problem, problemFile string) (string, error) {
	if problemFile != "" {
		data, err := os.ReadFile(problemFile)
		if err != nil {
			return "", fmt.Errorf("read problem file: %w", err)
		}
		return string(data), nil
	}
	if problem == "" {
		return "", fmt.Errorf("one of --problem or --problem-file is required")
	}
	return problem, nil
}

func readOptionalFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read hint file: %w", err)
	}
	return string(data), nil
}
