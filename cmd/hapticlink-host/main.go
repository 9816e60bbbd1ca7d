//go:build linux && !tinygo

// hapticlink-host runs the firmware services on a Linux board: the DRV2605
// sits on an i2c-dev bus, BLE goes through BlueZ, and telemetry can be
// mirrored into redis.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"hapticlink/bus"
	"hapticlink/drivers/drv2605"
	"hapticlink/internal/platform"
	"hapticlink/services/bridge"
	"hapticlink/services/central"
	"hapticlink/services/config"
	"hapticlink/services/haptic"
	"hapticlink/services/heartbeat"
	"hapticlink/services/loop"
	"hapticlink/types"
	"hapticlink/x/logx"

	"tinygo.org/x/bluetooth"
)

var (
	configPath = flag.String("config", "", "YAML config file (default: embedded host config)")
	logLevel   = flag.String("log-level", "", "Override log level (debug, info, warn, error)")
	i2cDevice  = flag.String("i2c", "", "Override i2c-dev node for the DRV2605")
	redisAddr  = flag.String("redis-addr", "", "Mirror telemetry to this redis server")
	redisPass  = flag.String("redis-pass", "", "Redis password")
	redisDB    = flag.Int("redis-db", 0, "Redis database number")
)

func main() {
	flag.Parse()
	log := logx.Logger()

	cfg, err := loadConfig()
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *i2cDevice != "" {
		cfg.Host.I2CDevice = *i2cDevice
	}
	if *redisAddr != "" {
		cfg.Host.RedisAddr = *redisAddr
	}
	logx.SetLevel(logx.ParseLevel(cfg.LogLevel))
	log.WithField("board", cfg.Board).WithField("i2c", cfg.Host.I2CDevice).Info("starting hapticlink")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b := bus.NewBus(16)
	cfg.Publish(b.NewConnection("config"))

	if cfg.Host.RedisAddr != "" {
		br := bridge.New(b.NewConnection("bridge"), cfg.Host.RedisKey,
			bridge.RedisDialer(cfg.Host.RedisAddr, *redisPass, *redisDB))
		go br.Start(ctx)
	}

	i2c, err := platform.OpenI2C(cfg.Host.I2CDevice)
	if err != nil {
		log.WithError(err).Fatal("open i2c")
	}
	defer i2c.Close()

	hap := haptic.New(drv2605.New(i2c), platform.NewLED(), cfg.HapticOptions(), b.NewConnection("haptic"))
	if err := hap.Setup(); err != nil {
		log.WithError(err).Warn("haptic driver not ready")
	}

	var lp *loop.Loop
	post := func(ev types.Event) bool { return lp.Post(ev) }

	gatt := platform.NewGATT(bluetooth.DefaultAdapter, post)
	cen := central.New(gatt, cfg.CentralOptions(), b.NewConnection("central"))
	lp = loop.New(cfg.QueueLen, cen, hap)

	hb := &heartbeat.Service{Interval: cfg.Tick, Post: post}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	if err := gatt.Enable(); err != nil {
		log.WithError(err).Fatal("enable bluetooth adapter")
	}
	gatt.Scan(ctx, cfg.Scan.Interval.Milliseconds(), cfg.Scan.Window.Milliseconds())

	lp.Run(ctx)
	log.WithField("coalesced", lp.Coalesced()).WithField("effects", hap.Effects()).
		WithField("toggles", cen.Toggles()).Info("stopped")
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFile(*configPath)
	}
	return config.Load("host")
}
