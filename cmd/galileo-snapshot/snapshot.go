package main

import (
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/paulmach/orb"

	"github.com/siddheshzz/galileo"
	"github.com/siddheshzz/galileo/render"
	"github.com/siddheshzz/galileo/source"
	"github.com/siddheshzz/galileo/style"
	"github.com/siddheshzz/galileo/text"
)

// runSnapshot renders the configured view into a PNG.
func runSnapshot() error {
	src, err := source.Open(conf.Map.Source)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	st, err := style.Load(conf.Map.Style)
	if err != nil {
		return fmt.Errorf("load style: %w", err)
	}

	m := galileo.NewMap(
		galileo.WithWorkers(conf.Engine.Workers),
		galileo.WithCacheBudget(conf.Engine.CacheBudget),
		galileo.WithLogger(engineLogger()),
	)
	defer m.Close()

	for _, path := range conf.Map.Fonts {
		fs, err := text.LoadFontSource(path)
		if err != nil {
			return fmt.Errorf("load font: %w", err)
		}
		m.RegisterFont(fs)
		log.Infof("registered font %s", fs.Name())
	}

	layer := m.AddVectorLayer("base", src, st)
	m.SetView(galileo.View{
		Center:  orb.Point{conf.Map.Lon, conf.Map.Lat},
		Zoom:    conf.Map.Zoom,
		Bearing: conf.Map.Bearing,
		Width:   conf.Map.Width,
		Height:  conf.Map.Height,
	})

	if err := waitIdle(layer, 2*time.Minute); err != nil {
		log.Warnf("%s, rendering what arrived", err)
	}

	frame := m.Compose()
	defer frame.Release()
	log.Infof("composed %d draw commands", frame.Len())

	surf := render.NewSoftwareSurface(conf.Map.Width, conf.Map.Height)
	surf.SetBackground(render.RGB(0.93, 0.93, 0.91))
	if err := surf.Submit(frame); err != nil {
		return fmt.Errorf("rasterize: %w", err)
	}

	out := outPath
	if out == "" {
		out = conf.Output.File
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, surf.Image()); err != nil {
		return fmt.Errorf("encode %s: %w", out, err)
	}
	log.Infof("snapshot written to %s (%dx%d)", out, conf.Map.Width, conf.Map.Height)
	return nil
}

// waitIdle polls until the layer has no tile work in flight.
func waitIdle(l *galileo.VectorLayer, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for l.Pending() > 0 {
		if time.Now().After(deadline) {
			return fmt.Errorf("tile work still pending after %s", timeout)
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}
