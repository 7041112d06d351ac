// Command emfield runs an FDTD simulation described by a scenario file,
// optionally persisting field snapshots and rendering receiver charts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/banshee-data/emfield/internal/config"
	"github.com/banshee-data/emfield/internal/field"
	"github.com/banshee-data/emfield/internal/model"
	"github.com/banshee-data/emfield/internal/monitor"
	"github.com/banshee-data/emfield/internal/snapshot"
	"github.com/banshee-data/emfield/internal/units"
	"github.com/banshee-data/emfield/internal/version"
)

func main() {
	var (
		scenarioPath = flag.String("scenario", "", "path to the scenario JSON file (required)")
		tuningPath   = flag.String("tuning", "", "optional tuning JSON overriding the scenario's inline tuning")
		steps        = flag.Int("steps", 0, "override the scenario's step count")
		snapshotDB   = flag.String("snapshot-db", "", "override the tuning snapshot_db_path")
		plotDir      = flag.String("plot-dir", "", "override the tuning plot_output_dir")
		showVersion  = flag.Bool("version", false, "print version information and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("emfield " + version.String())
		return
	}

	if *scenarioPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*scenarioPath, *tuningPath, *steps, *snapshotDB, *plotDir); err != nil {
		log.Fatalf("emfield: %v", err)
	}
}

func run(scenarioPath, tuningPath string, stepsOverride int, snapshotDB, plotDir string) error {
	sc, err := model.Load(scenarioPath)
	if err != nil {
		return err
	}
	if tuningPath != "" {
		tuning, err := config.LoadTuningConfig(tuningPath)
		if err != nil {
			return err
		}
		sc.Tuning = tuning
	}
	if stepsOverride > 0 {
		sc.Steps = stepsOverride
	}

	sim, err := sc.Build()
	if err != nil {
		return err
	}

	if snapshotDB == "" {
		snapshotDB = sim.Tuning.GetSnapshotDBPath()
	}
	if plotDir == "" {
		plotDir = sim.Tuning.GetPlotOutputDir()
	}

	var store *snapshot.Store
	var runRec *snapshot.Run
	if snapshotDB != "" {
		store, err = snapshot.Open(snapshotDB)
		if err != nil {
			return err
		}
		defer store.Close()

		runRec = &snapshot.Run{ModelName: sc.Name, Steps: sc.Steps, Dt: sim.Main.Dt}
		if err := store.InsertRun(runRec); err != nil {
			return err
		}
		log.Printf("recording run %s into %s", runRec.RunID, snapshotDB)

		if every := sim.Tuning.GetSnapshotEvery(); every > 0 {
			rec := &snapshot.Recorder{
				Store: store,
				RunID: runRec.RunID,
				Every: every,
				Planes: []snapshot.PlaneSpec{{
					Grid:       sim.Main,
					Component:  field.CompEz,
					NormalAxis: units.Z,
					PlaneIndex: sim.Main.Nz / 2,
				}},
			}
			sim.Engine.OnStep(rec.Record)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sim.Engine.Run(ctx, sc.Steps); err != nil {
		return err
	}

	if store != nil {
		for _, rx := range sim.Receivers {
			for c := field.CompEx; c <= field.CompHz; c++ {
				if _, err := store.InsertReceiverTrace(runRec.RunID, rx, c); err != nil {
					return fmt.Errorf("persisting trace for %q: %w", rx.Name, err)
				}
			}
		}
	}

	if plotDir != "" {
		if err := writePlots(sim, store, runRec, plotDir); err != nil {
			return err
		}
	}
	return nil
}

func writePlots(sim *model.Sim, store *snapshot.Store, run *snapshot.Run, plotDir string) error {
	for _, rx := range sim.Receivers {
		out := filepath.Join(plotDir, fmt.Sprintf("receiver_%s.html", rx.Name))
		comps := []field.Component{field.CompEx, field.CompEy, field.CompEz}
		if err := monitor.WriteReceiverChart(rx, comps, rx.Grid.Dt, out); err != nil {
			return err
		}
		log.Printf("wrote %s", out)
	}

	if store == nil || run == nil {
		return nil
	}
	steps, err := store.ListSteps(run.RunID)
	if err != nil {
		return err
	}
	for _, step := range steps {
		ps, err := store.GetPlaneSnapshot(run.RunID, sim.Main.Name, step, field.CompEz)
		if err != nil {
			return err
		}
		out := filepath.Join(plotDir, fmt.Sprintf("ez_step%04d.png", step))
		if err := monitor.PlotPlane(ps, sim.Main.Dx, sim.Main.Dy, out); err != nil {
			return err
		}
	}
	log.Printf("wrote %d plane heatmaps to %s", len(steps), plotDir)
	return nil
}
