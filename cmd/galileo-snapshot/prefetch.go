package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/maptile/tilecover"
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/siddheshzz/galileo/source"
	"github.com/siddheshzz/galileo/tile"
)

// runPrefetch downloads the configured region into an MBTiles archive
// readable by the engine's mbtiles source.
func runPrefetch() error {
	src, err := source.Open(conf.Map.Source)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}

	b, err := prefetchBound()
	if err != nil {
		return err
	}

	out := outPath
	if out == "" {
		out = conf.Prefetch.File
	}
	w, err := newMBTilesWriter(out, src.Name())
	if err != nil {
		return err
	}
	defer w.Close()

	start := time.Now()
	var total, failed int64
	for z := conf.Prefetch.MinZoom; z <= conf.Prefetch.MaxZoom; z++ {
		n, f, err := prefetchZoom(src, w, b, z)
		total += n
		failed += f
		if err != nil {
			return err
		}
	}
	if failed > 0 {
		log.Warnf("%d of %d tiles failed, rerun to fill the gaps", failed, total)
	}
	log.Infof("%d tiles in %.1fs -> %s", total, time.Since(start).Seconds(), out)
	return w.WriteBounds(b, conf.Prefetch.MinZoom, conf.Prefetch.MaxZoom)
}

func prefetchBound() (orb.Bound, error) {
	v := conf.Prefetch.Bound
	if len(v) != 4 {
		return orb.Bound{}, fmt.Errorf("prefetch.bound needs [west, south, east, north], got %v", v)
	}
	b := orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}
	if b.Min[0] >= b.Max[0] || b.Min[1] >= b.Max[1] {
		return orb.Bound{}, fmt.Errorf("prefetch.bound %v is empty", v)
	}
	return b, nil
}

// prefetchZoom fetches every tile covering b at zoom z and stores it.
// Individual tile failures are logged and counted, not fatal.
func prefetchZoom(src source.Source, w *mbtilesWriter, b orb.Bound, z int) (total, failed int64, err error) {
	set, err := tilecover.Geometry(b, maptile.Zoom(z))
	if err != nil {
		return 0, 0, fmt.Errorf("cover zoom %d: %w", z, err)
	}

	bar := pb.New(len(set)).Prefix(fmt.Sprintf("zoom %2d: ", z))
	bar.SetRefreshRate(time.Second)
	bar.Start()

	workers := make(chan struct{}, max(conf.Prefetch.Workers, 1))
	var wg sync.WaitGroup
	var failures atomic.Int64
	ctx := context.Background()

	for t := range set {
		workers <- struct{}{}
		if conf.Prefetch.Delay > 0 {
			time.Sleep(time.Duration(conf.Prefetch.Delay) * time.Millisecond)
		}
		wg.Add(1)
		go func(t maptile.Tile) {
			defer func() {
				bar.Increment()
				wg.Done()
				<-workers
			}()
			c := tile.Coord{Z: uint32(t.Z), X: t.X, Y: t.Y}
			data, err := src.Fetch(ctx, c)
			switch {
			case errors.Is(err, source.ErrNotFound):
				// nothing mapped at this coordinate
			case err != nil:
				log.Debugf("fetch %s: %s", c, err)
				failures.Add(1)
			default:
				if err := w.Put(c, data); err != nil {
					log.Errorf("store %s: %s", c, err)
					failures.Add(1)
				}
			}
		}(t)
	}
	wg.Wait()
	bar.Finish()
	return int64(len(set)), failures.Load(), nil
}

// mbtilesWriter stores gzipped vector tiles in the MBTiles layout.
type mbtilesWriter struct {
	db *sql.DB

	mu  sync.Mutex
	ins *sql.Stmt
}

func newMBTilesWriter(path, name string) (*mbtilesWriter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	schema := `
CREATE TABLE IF NOT EXISTS metadata (name text, value text);
CREATE UNIQUE INDEX IF NOT EXISTS metadata_index ON metadata (name);
CREATE TABLE IF NOT EXISTS tiles (zoom_level integer, tile_column integer, tile_row integer, tile_data blob);
CREATE UNIQUE INDEX IF NOT EXISTS tile_index ON tiles (zoom_level, tile_column, tile_row);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	for _, kv := range [][2]string{{"name", name}, {"format", "pbf"}} {
		if err := writeMeta(db, kv[0], kv[1]); err != nil {
			db.Close()
			return nil, err
		}
	}
	ins, err := db.Prepare(`INSERT OR REPLACE INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &mbtilesWriter{db: db, ins: ins}, nil
}

// Put stores raw tile bytes gzipped, with the row flipped to the TMS
// scheme MBTiles uses.
func (w *mbtilesWriter) Put(c tile.Coord, data []byte) error {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	row := (uint32(1) << c.Z) - c.Y - 1

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.ins.Exec(c.Z, c.X, row, buf.Bytes())
	return err
}

func (w *mbtilesWriter) WriteBounds(b orb.Bound, minZoom, maxZoom int) error {
	bounds := fmt.Sprintf("%g,%g,%g,%g", b.Min[0], b.Min[1], b.Max[0], b.Max[1])
	for _, kv := range [][2]string{
		{"bounds", bounds},
		{"minzoom", strconv.Itoa(minZoom)},
		{"maxzoom", strconv.Itoa(maxZoom)},
	} {
		if err := writeMeta(w.db, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

func (w *mbtilesWriter) Close() error {
	w.ins.Close()
	return w.db.Close()
}

func writeMeta(db *sql.DB, name, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)`, name, value)
	if err != nil {
		return fmt.Errorf("write metadata %s: %w", name, err)
	}
	return err
}
