// Package main is the entry point for the desktop model viewer.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/aowow-viewer/internal/app"
	"github.com/Faultbox/aowow-viewer/internal/config"
	"github.com/Faultbox/aowow-viewer/internal/logger"
	"github.com/Faultbox/aowow-viewer/internal/lookup"
)

var (
	flagType    = flag.Int("type", int(lookup.TypeCharacter), "Entity type code (1 npc, 2 object, 3 item, 4 itemset, 8 pet, 16 character)")
	flagDisplay = flag.Int("display", 0, "Display id")
	flagSlot    = flag.Int("slot", -1, "Item slot")
	flagRace    = flag.Int("race", lookup.DefaultRace, "Character race id")
	flagSex     = flag.Int("sex", lookup.DefaultSex, "Character sex (0 male, 1 female)")
	flagSkin    = flag.Int("skin", 0, "Character skin index")
	flagItems   = flag.String("items", "", "Comma-separated equipped display ids")
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	req, err := requestFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request error: %v\n", err)
		os.Exit(2)
	}

	logger.Info("=== Model Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	a, err := app.New(cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	a.Show(req)

	if err := a.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

func requestFromFlags() (lookup.ModelRequest, error) {
	t := lookup.EntityType(*flagType)
	if !t.Valid() {
		return lookup.ModelRequest{}, fmt.Errorf("invalid type: %d", *flagType)
	}
	req := lookup.ModelRequest{Type: t, DisplayID: *flagDisplay}
	if *flagSlot >= 0 {
		req.Slot = lookup.IntPtr(*flagSlot)
	}
	if t == lookup.TypeCharacter {
		req.Race = lookup.IntPtr(*flagRace)
		req.Sex = lookup.IntPtr(*flagSex)
		req.SkinIndex = *flagSkin
		items, err := parseItems(*flagItems)
		if err != nil {
			return lookup.ModelRequest{}, err
		}
		req.Equipment = items
	}
	return req, nil
}

func parseItems(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad item id %q: %w", f, err)
		}
		out = append(out, id)
	}
	return out, nil
}
