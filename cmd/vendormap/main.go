package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			if err := runServe(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "ingest":
			if err := runIngest(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "export":
			if err := runExport(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "view":
			if err := runView(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "version":
			fmt.Println("vendormap " + version)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	printUsage()
	os.Exit(2)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `vendormap - vendor service-area coverage engine

Usage:
  vendormap ingest [flags]  Load order/geo/district CSVs into a dataset .db
  vendormap serve [flags]   Serve the live coverage API over a dataset
  vendormap view [flags]    Open the interactive terminal dashboard
  vendormap export [flags]  Export the current view to csv/json/geojson
  vendormap version         Show version

Run 'vendormap <command> --help' for flags.
`)
}
