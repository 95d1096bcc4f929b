package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "run":
		if err := runCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "validate":
		if err := validateCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "step":
		if err := stepCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("simcore version 0.1.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`simcore - hybrid Petri net simulation core

Usage:
  simcore <command> [options]

Commands:
  run       Run a net to completion, printing the final marking
  validate  Validate a net document's structure
  step      Advance a net by a fixed number of steps, printing each marking
  help      Show this help message
  version   Show version information

Examples:
  # Validate a model
  simcore validate model.json

  # Run to completion with a settings file
  simcore run model.json --settings settings.yaml

  # Step through a model ten times at dt=0.1
  simcore step model.json --dt 0.1 --steps 10

For command-specific help, run:
  simcore <command> --help`)
}
