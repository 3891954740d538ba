// Command thing-sim is an interactive device simulator.
//
// It loads a thing definition from a YAML file, brings up a live
// device, and drops into a console where properties can be read and
// written, actions driven through their lifecycle, and events emitted.
// The simulator can optionally connect to a gateway (by address or via
// mDNS discovery), persist property values across runs, and record all
// traffic to a structured log file.
//
// Usage:
//
//	thing-sim -thing <file> [flags]
//
// Flags:
//
//	-thing string     Thing definition YAML file (required)
//	-connect string   Gateway IPC address (host:port)
//	-discover string  Discover a gateway by ID via mDNS
//	-addon string     Add-on ID to register as (default "thing-sim")
//	-state string     State file for persisting property values
//	-log string       Structured log file (CBOR)
//
// Examples:
//
//	# Simulate a lamp offline
//	thing-sim -thing lamp.yaml
//
//	# Connect to a local gateway and keep state across runs
//	thing-sim -thing lamp.yaml -connect 127.0.0.1:9500 -state lamp-state.json
//
//	# Find the gateway over mDNS
//	thing-sim -thing lamp.yaml -discover gw-1234
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/tim-hellhake/gateway-addon-go/cmd/thing-sim/interactive"
	"github.com/tim-hellhake/gateway-addon-go/pkg/discovery"
	"github.com/tim-hellhake/gateway-addon-go/pkg/ipc"
	"github.com/tim-hellhake/gateway-addon-go/pkg/log"
	"github.com/tim-hellhake/gateway-addon-go/pkg/persistence"
	"github.com/tim-hellhake/gateway-addon-go/pkg/schema"
	"github.com/tim-hellhake/gateway-addon-go/pkg/things"
)

// Version is the simulator version, set at build time.
var Version = "dev"

var (
	thingFile   = flag.String("thing", "", "thing definition YAML file (required)")
	connectAddr = flag.String("connect", "", "gateway IPC address (host:port)")
	discoverID  = flag.String("discover", "", "discover a gateway by ID via mDNS")
	addonID     = flag.String("addon", "thing-sim", "add-on ID to register as")
	stateFile   = flag.String("state", "", "state file for persisting property values")
	logFile     = flag.String("log", "", "structured log file (CBOR)")
)

func main() {
	flag.Parse()
	if *thingFile == "" {
		fmt.Fprintln(os.Stderr, "thing-sim: -thing is required")
		flag.Usage()
		os.Exit(1)
	}
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "thing-sim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	def, err := schema.LoadThing(*thingFile)
	if err != nil {
		return err
	}
	device, err := def.Build()
	if err != nil {
		return err
	}

	logger, closeLogger, err := openLogger()
	if err != nil {
		return err
	}
	defer closeLogger()

	var store *persistence.AddonStateStore
	if *stateFile != "" {
		store = persistence.NewAddonStateStore(*stateFile)
		if err := restoreValues(store, device); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	console, err := interactive.New(device)
	if err != nil {
		return err
	}

	// Live log output goes through the console's writer so it does not
	// clobber the prompt. Off until toggled with the "log" command.
	consoleLog := log.NewSwitchLogger(log.NewSlogAdapter(
		slog.New(slog.NewTextHandler(console.Stdout(), &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))))
	console.OnToggleLog = consoleLog.Toggle
	logger = log.NewMultiLogger(logger, consoleLog)

	manager, err := connectGateway(ctx, device, logger)
	if err != nil {
		return err
	}
	if manager != nil {
		defer manager.Unload()
	} else {
		// Offline the manager never sees notifications, so a
		// logging-only hub keeps the event stream alive.
		device.SetHub(logHub{logger})
	}

	// Shut down cleanly on SIGINT/SIGTERM.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	console.Run(ctx, cancel)

	if store != nil {
		return saveValues(store, device)
	}
	return nil
}

// logHub records notifications without a gateway attached.
type logHub struct {
	logger log.Logger
}

func (h logHub) SendPropertyChanged(d *things.Device, p *things.Property) {
	h.logger.Log(log.NewPropertyEvent(d.ID(), p.Name(), p.Value()))
}

func (h logHub) SendActionStatus(d *things.Device, a *things.Action) {
	h.logger.Log(log.NewActionEvent(d.ID(), a.ID(), a.Name(), a.Status()))
}

func (h logHub) SendEvent(d *things.Device, e *things.Event) {
	h.logger.Log(log.NewEmittedEvent(d.ID(), e.Name(), e.Data()))
}

func openLogger() (log.Logger, func() error, error) {
	if *logFile == "" {
		return log.NoopLogger{}, func() error { return nil }, nil
	}
	logger, err := log.NewFileLogger(*logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logger, logger.Close, nil
}

// connectGateway attaches the device to a gateway when one was asked
// for. Offline simulation (no -connect, no -discover) returns nil.
func connectGateway(ctx context.Context, device *things.Device, logger log.Logger) (*ipc.Manager, error) {
	address := *connectAddr
	if address == "" && *discoverID != "" {
		browser := discovery.NewMDNSBrowser(discovery.DefaultBrowserConfig())
		svc, err := browser.Find(ctx, *discoverID)
		if err != nil {
			return nil, err
		}
		if len(svc.Addresses) == 0 {
			return nil, discovery.ErrGatewayNotFound
		}
		address = net.JoinHostPort(svc.Addresses[0], fmt.Sprint(svc.Port))
		fmt.Printf("Found gateway %s at %s\n", svc.Info.GatewayID, address)
	}
	if address == "" {
		return nil, nil
	}

	client := ipc.NewClient(ipc.ClientConfig{
		Network: "tcp",
		Address: address,
		Logger:  logger,
	})
	manager := ipc.NewManager(ipc.ManagerConfig{
		AddonID: *addonID,
		Version: Version,
		Logger:  logger,
		OnAction: func(d *things.Device, a *things.Action) {
			// The console drives Start and Finish by hand.
			fmt.Printf("Gateway requested action %s (%s)\n", a.Name(), a.ID())
		},
	}, client)

	if err := manager.Run(); err != nil {
		return nil, err
	}
	if err := manager.AddDevice(device); err != nil {
		manager.Unload()
		return nil, err
	}
	return manager, nil
}

func restoreValues(store *persistence.AddonStateStore, device *things.Device) error {
	state, err := store.Load()
	if err != nil {
		return err
	}
	if state == nil {
		return nil
	}
	saved, exists := state.Devices[device.ID()]
	if !exists {
		return nil
	}
	for name, value := range saved.Values {
		p, err := device.Property(name)
		if err != nil {
			// The definition may have changed since the save.
			continue
		}
		p.SetCachedValue(value)
	}
	return nil
}

func saveValues(store *persistence.AddonStateStore, device *things.Device) error {
	values := make(map[string]any)
	for _, p := range device.Properties() {
		values[p.Name()] = p.Value()
	}
	return store.Save(&persistence.AddonState{
		Devices: map[string]persistence.DeviceState{
			device.ID(): {Values: values},
		},
	})
}
