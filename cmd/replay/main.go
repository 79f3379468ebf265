package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"carscout/internal/offers"
	"carscout/internal/replay"
	"carscout/internal/routing"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to recorded conversation JSON")
	catalogPath := flag.String("catalog", "", "optional offer catalog YAML for matching")
	verbose := flag.Bool("v", false, "print per-turn detail")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/conversation.json [--catalog catalog.yaml] [-v]")
		os.Exit(2)
	}

	fixture, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var source offers.Source
	if *catalogPath != "" {
		catalog, err := offers.LoadCatalog(*catalogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		source = catalog
	}

	results, summary := replay.Replay(fixture, source, routing.DefaultConfig())

	if fixture.Description != "" {
		fmt.Printf("Replaying: %s\n", fixture.Description)
	}
	for _, r := range results {
		status := "PASS"
		if len(r.Failures) > 0 {
			status = "FAIL"
		}
		fmt.Printf("[%s] %-12s intent=%-22s conf=%.2f offers=%d\n",
			status, r.TurnID, r.Classification.Label, r.Classification.Confidence, r.OfferCount)
		if *verbose || len(r.Failures) > 0 {
			for _, f := range r.Failures {
				fmt.Printf("         %s\n", f)
			}
		}
	}

	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("turns=%d passed=%d failed=%d\n", summary.TotalTurns, summary.Passed, summary.Failed)
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// #endregion main
