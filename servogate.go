// servogate gates a servo-driven lock behind RFID credential checks,
// relaying commands to the actuator microcontroller over a serial link.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"servogate/access"
	"servogate/cards"
	"servogate/indicator"
	"servogate/mqtt"
	"servogate/reader"
	"servogate/transport"
)

var myBuild string

// App holds the application state and dependencies.
type App struct {
	cfg       Config
	store     *cards.Store
	ctrl      *access.Controller
	reporter  *access.Reporter
	link      *transport.Link
	reader    reader.CardReader
	mqtt      *mqtt.Client
	indicator indicator.Indicator
	ctx       context.Context
	cancel    context.CancelFunc
}

func main() {
	fmt.Printf("servogate build %s\n", myBuild)

	cfgfile := flag.String("cfg", "servogate.cfg", "Node config file")
	flag.Parse()

	// Node configuration: devices, broker, intervals.
	cfg, err := LoadNodeConfig(*cfgfile)
	if err != nil {
		log.Printf("Node config: %v (using defaults)", err)
	}

	// Access configuration: authorized cards, servo positions, pins.
	store := cards.NewStore(cards.DefaultConfig())
	if err := store.Load(cfg.AccessFile); err != nil {
		log.Printf("Access config: %v (using defaults)", err)
	} else {
		log.Println("Access configuration loaded")
	}
	accessCfg := store.Config()

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		cfg:    cfg,
		store:  store,
		ctx:    ctx,
		cancel: cancel,
	}

	// Local panel LEDs (no-op when unconfigured)
	app.indicator, err = indicator.New(cfg.Indicator)
	if err != nil {
		log.Fatalf("Init indicator: %v", err)
	}
	app.indicator.ConnectionLost()

	// Serial link to the actuator controller
	if cfg.SerialDevice != "" {
		app.link, err = transport.Open(cfg.SerialDevice, accessCfg.BaudRate)
	} else {
		app.link, err = transport.Detect(accessCfg.BaudRate)
	}
	if err != nil {
		log.Fatalf("Open actuator link: %v", err)
	}
	log.Printf("Connected to actuator on %s", app.link.Device())

	// RFID reader
	app.reader, err = reader.New(cfg.Reader, accessCfg.VendorID, accessCfg.ProductID)
	if err != nil {
		log.Fatalf("Init reader: %v", err)
	}

	// Access controller and status reporter
	app.ctrl = access.NewController(store, app.link, access.Config{
		DefaultPos: accessCfg.ServoDefaultPos,
		AllowedPos: accessCfg.ServoAllowedPos,
		Dwell:      cfg.Dwell(),
	})
	app.reporter = access.NewReporter(app.ctrl, store, app.link, cfg.StatusInterval())

	// MQTT event plane (disabled when no host configured)
	app.mqtt, err = mqtt.New(cfg.MQTT, cfg.ClientID, mqtt.Handlers{
		OnConnect:    app.indicator.Idle,
		OnDisconnect: app.indicator.ConnectionLost,
	})
	if err != nil {
		log.Fatalf("Init MQTT: %v", err)
	}

	app.ctrl.OnDecision(app.onDecision)

	// Start background loops
	go func() {
		if err := app.mqtt.Connect(); err != nil {
			log.Printf("MQTT connect: %v", err)
		}
	}()

	reads := make(chan []byte, 4)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.readLoop(reads)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.ctrl.Run(ctx, reads)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.reporter.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.pingSender()
	}()

	console, err := NewConsole(app)
	if err != nil {
		log.Fatalf("Init console: %v", err)
	}
	go console.Run(ctx, cancel)

	log.Println("servogate started. Waiting for cards...")

	// Wait for console quit or shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	fmt.Println("Shutting down...")
	cancel()
	wg.Wait()

	// Cleanup: the link is closed exactly once, after every loop that
	// sends on it has stopped.
	app.mqtt.Disconnect()
	app.reader.Close()
	app.link.Close()
	app.indicator.Release()

	fmt.Println("System shutdown complete")
}

// readLoop feeds raw card reads into the controller queue. The reader
// paces itself; a read arriving during a dwell waits in the channel.
func (app *App) readLoop(reads chan<- []byte) {
	for {
		raw, err := app.reader.Read(app.ctx)
		if err != nil {
			if app.ctx.Err() != nil {
				return
			}
			log.Printf("Read card: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if len(raw) == 0 {
			continue
		}

		select {
		case reads <- raw:
		case <-app.ctx.Done():
			return
		}
	}
}

// onDecision mirrors each access decision to the local panel LEDs and the
// MQTT event plane.
func (app *App) onDecision(card string, allowed bool) {
	if allowed {
		app.indicator.Granted()
	} else {
		app.indicator.Denied()
	}
	time.AfterFunc(app.cfg.Dwell(), app.indicator.Idle)

	app.mqtt.PublishAccess(card, allowed)
}

// pingSender publishes a periodic liveness message while MQTT is enabled.
func (app *App) pingSender() {
	ticker := time.NewTicker(app.cfg.PingInterval())
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			app.mqtt.Ping()
		}
	}
}
