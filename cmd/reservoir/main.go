package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/edp1096/toy-reservoir/pkg/analysis"
	"github.com/edp1096/toy-reservoir/pkg/config"
	"github.com/edp1096/toy-reservoir/pkg/simulator"
	"github.com/edp1096/toy-reservoir/pkg/util"
)

var (
	verbose = flag.Bool("v", false, "print configuration, matrix and every step")
	steady  = flag.Bool("steady", false, "solve the steady state instead of stepping")
	sweep   = flag.String("sweep", "", "steady state sweep of one side, side:start:stop:increment")
	dump    = flag.String("dump", "", "write the validated configuration as yaml or json and exit")
)

func printTransient(sim *simulator.TwoDimReservoir) {
	results := sim.Results()
	nx := sim.Grid().Nx

	steps := results["STEP"]
	fmt.Printf("\nTransient Analysis Results (%d snapshots):\n", len(steps))
	fmt.Println("------------------------------------------------")
	for k := range steps {
		field, ok := sim.Snapshot(k)
		if !ok {
			continue
		}
		fmt.Printf("step %4d  t=%s\n", int(steps[k]), util.FormatTime(results["TIME"][k]))
		fmt.Println(util.FormatField(field, nx))
	}
	if len(steps) == 0 {
		fmt.Println(util.FormatField(sim.GetSolution(), nx))
	}
}

func printSweep(results map[string][]float64, n int) {
	vals := results["SWEEP"]
	fmt.Printf("\nBoundary Sweep Results (%d points):\n", len(vals))
	fmt.Println("------------------------------------------------")
	for i, v := range vals {
		field := make([]float64, n)
		for c := range field {
			field[c] = results[analysis.PressureKey(c)][i]
		}
		fmt.Printf("value=%-12s %s\n", util.FormatValueFactor(v, ""), util.FormatRow(field))
	}
}

func parseSweep(arg string) (side string, start, stop, inc float64, err error) {
	parts := strings.Split(arg, ":")
	if len(parts) != 4 {
		return "", 0, 0, 0, fmt.Errorf("sweep %q: want side:start:stop:increment", arg)
	}
	nums := make([]float64, 3)
	for i, s := range parts[1:] {
		if nums[i], err = strconv.ParseFloat(s, 64); err != nil {
			return "", 0, 0, 0, fmt.Errorf("sweep %q: %w", arg, err)
		}
	}
	return parts[0], nums[0], nums[1], nums[2], nil
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("Usage: reservoir [-v] [-steady] [-sweep side:start:stop:inc] [-dump out.yaml] <config_file>")
	}

	cfg, err := config.Load(flag.Arg(0))
	if err != nil {
		log.Fatalf("Error reading config: %v", err)
	}

	if *dump != "" {
		f, err := os.Create(*dump)
		if err != nil {
			log.Fatalf("Error creating %s: %v", *dump, err)
		}
		defer f.Close()
		if err := config.Write(f, cfg, config.FormatFromPath(*dump)); err != nil {
			log.Fatalf("Error writing config: %v", err)
		}
		return
	}

	sim, err := simulator.New(cfg)
	if err != nil {
		log.Fatalf("Error creating reservoir: %v", err)
	}
	defer sim.Close()

	if *verbose {
		g := sim.Grid()
		fmt.Printf("Grid: %d x %d cells, solver %s, dt=%s\n", g.Nx, g.Ny, cfg.Numerical.Solver.Scheme, util.FormatTime(cfg.Numerical.TimeStep))
		if limit := sim.MaxStableTimeStep(); limit > 0 {
			fmt.Printf("Explicit stability limit: %s\n", util.FormatTime(limit))
		}
		sim.PrintSystem(os.Stdout)
	}

	switch {
	case *sweep != "":
		side, start, stop, inc, err := parseSweep(*sweep)
		if err != nil {
			log.Fatal(err)
		}
		results, err := sim.Sweep(side, start, stop, inc)
		if err != nil {
			log.Fatalf("Sweep failed: %v", err)
		}
		printSweep(results, sim.NumCells())
	case *steady:
		p, err := sim.SteadyState()
		if err != nil {
			log.Fatalf("Steady state failed: %v", err)
		}
		fmt.Println("\nSteady State Pressure:")
		fmt.Println(util.FormatField(p, sim.Grid().Nx))
	default:
		if *verbose {
			for k := 0; k < cfg.Numerical.NumberOfTimeSteps; k++ {
				if err := sim.SolveOneStep(); err != nil {
					log.Fatalf("Analysis execution failed: %v", err)
				}
				fmt.Printf("step %4d  t=%s  %s\n", sim.Step(), util.FormatTime(sim.Time()), util.FormatRow(sim.GetSolution()))
			}
			fmt.Printf("Material balance error: %.3e\n", sim.MaterialBalanceError())
		} else if err := sim.Solve(); err != nil {
			log.Fatalf("Analysis execution failed: %v", err)
		}
		printTransient(sim)
	}
}
