//go:build nrf52840

// hapticlink is the nRF52840 firmware: it buzzes the DRV2605 once per tick
// while advertisements are being heard and, once connected to a peer, keeps
// toggling that peer's characteristic.
package main

import (
	"context"
	"runtime"
	"time"

	"hapticlink/bus"
	"hapticlink/drivers/drv2605"
	"hapticlink/internal/platform"
	"hapticlink/services/central"
	"hapticlink/services/config"
	"hapticlink/services/haptic"
	"hapticlink/services/heartbeat"
	"hapticlink/services/loop"
	"hapticlink/types"
	"hapticlink/x/logx"

	"tinygo.org/x/bluetooth"
)

func main() {
	cfg, cfgErr := config.Load("nrf52840")
	if cfgErr != nil {
		cfg = config.Default()
	}
	// Allow USB CDC to enumerate before we print.
	time.Sleep(cfg.BootDelay)
	logx.SetLevel(logx.ParseLevel(cfg.LogLevel))
	if cfgErr != nil {
		logx.Error("main", "embedded config rejected, using defaults", "err", cfgErr)
	}
	logx.Info("main", "boot", "board", cfg.Board)

	ctx := context.Background()
	b := bus.NewBus(4)
	cfg.Publish(b.NewConnection("config"))

	i2c, err := platform.I2C()
	if err != nil {
		logx.Error("main", "i2c configure failed", "err", err)
	}
	hap := haptic.New(drv2605.New(i2c), platform.NewLED(), cfg.HapticOptions(), b.NewConnection("haptic"))
	if err := hap.Setup(); err != nil {
		logx.Warn("main", "haptic driver not ready", "err", err)
	}

	var lp *loop.Loop
	post := func(ev types.Event) bool { return lp.Post(ev) }

	gatt := platform.NewGATT(bluetooth.DefaultAdapter, post)
	cen := central.New(gatt, cfg.CentralOptions(), b.NewConnection("central"))
	lp = loop.New(cfg.QueueLen, cen, hap)

	hb := &heartbeat.Service{Interval: cfg.Tick, Post: post}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	if err := gatt.Enable(); err != nil {
		logx.Error("main", "ble enable failed", "err", err)
	} else {
		gatt.Scan(ctx, cfg.Scan.Interval.Milliseconds(), cfg.Scan.Window.Milliseconds())
	}

	go monitor(b.NewConnection("monitor"), lp)
	lp.Run(ctx)
}

// monitor logs every retained state change and a periodic memory snapshot.
func monitor(conn *bus.Connection, lp *loop.Loop) {
	sub := conn.Subscribe(bus.T("state", "#"))
	tick := time.NewTicker(30 * time.Second)
	defer tick.Stop()
	for {
		select {
		case m := <-sub.Channel():
			logx.Debug("monitor", m.Topic.String())
		case <-tick.C:
			printMem(lp)
		}
	}
}

// printMem prints a compact snapshot of TinyGo runtime memory stats.
func printMem(lp *loop.Loop) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	println(
		"[mem]",
		"alloc:", uint32(ms.Alloc),
		"heapInuse:", uint32(ms.HeapInuse),
		"mallocs:", uint32(ms.Mallocs),
		"frees:", uint32(ms.Frees),
		"coalesced:", lp.Coalesced(),
	)
}
