// Package config holds the startup configuration for the acquisition
// subsystem. Values are read once at startup; parsing a configuration file
// is the caller's concern.
package config

import (
	"time"

	"glance/internal/imglist"
)

const (
	// MaxCacheCap bounds both cache capacities.
	MaxCacheCap = 1024

	defaultHistoryCap    = 8
	defaultPreloadCap    = 4
	defaultSlideInterval = 2 * time.Second
)

// Config is the subsystem configuration.
type Config struct {
	Order         imglist.Order // insertion order for discovered sources
	Loop          bool          // wrap navigation at the list edges
	Recursive     bool          // descend into subdirectories when scanning
	HistoryCap    int           // history cache capacity, 0..MaxCacheCap
	PreloadCap    int           // preload cache capacity, 0..MaxCacheCap
	SlideInterval time.Duration // auto-advance period
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Order:         imglist.OrderName,
		Loop:          true,
		Recursive:     true,
		HistoryCap:    defaultHistoryCap,
		PreloadCap:    defaultPreloadCap,
		SlideInterval: defaultSlideInterval,
	}
}

// Normalize clamps out-of-range values into their valid domains and returns
// the result. It never fails; bad input degrades to the nearest legal value.
func (c Config) Normalize() Config {
	c.HistoryCap = clamp(c.HistoryCap, 0, MaxCacheCap)
	c.PreloadCap = clamp(c.PreloadCap, 0, MaxCacheCap)
	if c.SlideInterval <= 0 {
		c.SlideInterval = defaultSlideInterval
	}
	return c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
