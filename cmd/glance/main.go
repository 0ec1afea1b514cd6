package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"glance/internal/config"
	"glance/internal/imglist"
	"glance/internal/viewer"
)

func main() {
	log.SetPrefix("glance ")

	cfg := config.Default()
	orderName := flag.String("order", cfg.Order.String(), "insertion order: none|name|numeric|mtime|size|random")
	loop := flag.Bool("loop", cfg.Loop, "wrap navigation at the list edges")
	recursive := flag.Bool("recursive", cfg.Recursive, "descend into subdirectories")
	historyCap := flag.Int("history", cfg.HistoryCap, "history cache capacity")
	preloadCap := flag.Int("preload", cfg.PreloadCap, "preload cache capacity")
	interval := flag.Duration("interval", cfg.SlideInterval, "auto-advance interval")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: glance [flags] <directory>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	order, err := imglist.ParseOrder(*orderName)
	if err != nil {
		log.Fatal(err)
	}
	cfg = config.Config{
		Order:         order,
		Loop:          *loop,
		Recursive:     *recursive,
		HistoryCap:    *historyCap,
		PreloadCap:    *preloadCap,
		SlideInterval: *interval,
	}.Normalize()

	if err := run(flag.Arg(0), cfg); err != nil {
		log.Fatal(err)
	}
}

func run(dir string, cfg config.Config) error {
	v, err := viewer.Setup(dir, cfg, func(msg string) { log.Println(msg) })
	if err != nil {
		return err
	}
	defer v.Close()

	session := viewer.NewSession(v, os.Stdin, os.Stdout)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	err = session.Run(ctx)
	log.Printf("session ended after %s", time.Since(start).Round(time.Millisecond))
	return err
}
