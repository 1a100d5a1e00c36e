// Command galileo-snapshot drives the map engine without a window: it
// renders a configured view to a PNG, or with -prefetch downloads a
// tile region into an MBTiles archive for offline use.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/siddheshzz/galileo"
)

var (
	showHelp    bool
	configPath  string
	logLevel    string
	prefetching bool
	outPath     string
)

func main() {
	flag.BoolVar(&showHelp, "h", false, "this help")
	flag.StringVar(&configPath, "c", "galileo.toml", "config `file`")
	flag.StringVar(&logLevel, "l", "info", "log `level`")
	flag.BoolVar(&prefetching, "prefetch", false, "fill an MBTiles archive instead of rendering")
	flag.StringVar(&outPath, "o", "", "output `file`, overriding the config")
	flag.Usage = usage
	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	initConfig(configPath)
	initLog()

	var err error
	if prefetching {
		err = runPrefetch()
	} else {
		err = runSnapshot()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `galileo-snapshot %s
Usage: galileo-snapshot [-h] [-c file] [-l level] [-o file] [-prefetch]
`, galileo.Version)
	flag.PrintDefaults()
}
