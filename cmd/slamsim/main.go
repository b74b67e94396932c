// Command slamsim runs the SLAM sensor-fusion simulation described by a
// JSON configuration file: recorded camera, LiDAR, and pose datasets are
// replayed on a tick-driven message bus, and the fused landmark map is
// written to output_file.json (or error_output.json on a sensor fault).
package main

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"github.com/gurion-robotics/slamsim/internal/config"
	"github.com/gurion-robotics/slamsim/internal/dataio"
	"github.com/gurion-robotics/slamsim/internal/msgbus"
	"github.com/gurion-robotics/slamsim/internal/operators"
	"github.com/gurion-robotics/slamsim/internal/slam"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: slamsim <config.json>")
		os.Exit(2)
	}

	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "slamsim: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	cameraData, err := dataio.LoadCameraData(cfg.Cameras.CameraDatasPath)
	if err != nil {
		return err
	}
	lidarData, err := dataio.LoadLidarData(cfg.LiDarWorkers.LidarsDataPath)
	if err != nil {
		return err
	}
	poseData, err := dataio.LoadPoseData(cfg.PoseJSONFile)
	if err != nil {
		return err
	}

	bus := msgbus.New()
	stats := slam.NewStatistics()
	scanDB := slam.NewScanDB(lidarData)

	var sensors atomic.Int32
	var participants []msgbus.Operator

	for _, cam := range cfg.Cameras.CamerasConfigurations {
		frames := cameraData[cam.CameraKey]
		if len(frames) == 0 {
			log.Printf("camera %d: no frames under key %q", cam.ID, cam.CameraKey)
		}
		participants = append(participants, operators.NewCamera(cam.ID, cam.Frequency, frames, stats))
		sensors.Add(1)
	}

	for _, l := range cfg.LiDarWorkers.LidarConfigurations {
		participants = append(participants, operators.NewLidar(l.ID, l.Frequency, scanDB, stats))
		sensors.Add(1)
	}

	participants = append(participants, operators.NewPoseSource(poseData))
	sensors.Add(1)

	fusion := operators.NewFusion(stats, dataio.OutputWriter{})
	participants = append(participants, fusion)

	clock := operators.NewClock(cfg.TickPeriod(), cfg.Duration, &sensors, stats)

	operators.RunAll(bus, clock, participants)

	log.Printf("simulation finished after %d ticks", stats.Ticks())
	return nil
}
