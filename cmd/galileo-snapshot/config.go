package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

var conf *Conf

// Conf mirrors the TOML config file.
type Conf struct {
	Map struct {
		Style   string   `toml:"style"`
		Source  string   `toml:"source"`
		Lon     float64  `toml:"lon"`
		Lat     float64  `toml:"lat"`
		Zoom    float64  `toml:"zoom"`
		Bearing float64  `toml:"bearing"`
		Width   int      `toml:"width"`
		Height  int      `toml:"height"`
		Fonts   []string `toml:"fonts"`
	} `toml:"map"`
	Output struct {
		File string `toml:"file"`
	} `toml:"output"`
	Engine struct {
		Workers     int `toml:"workers"`
		CacheBudget int `toml:"cacheBudget"`
	} `toml:"engine"`
	Prefetch struct {
		File    string    `toml:"file"`
		MinZoom int       `toml:"minZoom"`
		MaxZoom int       `toml:"maxZoom"`
		Bound   []float64 `toml:"bound"` // west, south, east, north
		Workers int       `toml:"workers"`
		Delay   int       `toml:"delay"` // milliseconds between request starts
	} `toml:"prefetch"`
}

func initConfig(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "config file %s does not exist\n", path)
		os.Exit(1)
	}
	viper.SetConfigType("toml")
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "read config %s: %s\n", viper.ConfigFileUsed(), err)
		os.Exit(1)
	}

	viper.SetDefault("map.zoom", 12.0)
	viper.SetDefault("map.width", 1280)
	viper.SetDefault("map.height", 720)
	viper.SetDefault("output.file", "snapshot.png")
	viper.SetDefault("prefetch.file", "prefetch.mbtiles")
	viper.SetDefault("prefetch.maxZoom", 5)
	viper.SetDefault("prefetch.workers", 4)

	if err := viper.Unmarshal(&conf); err != nil {
		fmt.Fprintf(os.Stderr, "parse config: %s\n", err)
		os.Exit(1)
	}
}
