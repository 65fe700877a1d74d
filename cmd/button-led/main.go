// Command button-led drives an LED from two push buttons through the GPIO
// sysfs interface and publishes button and LED changes to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/button-led/internal/config"
	"github.com/sweeney/button-led/internal/gpio"
	"github.com/sweeney/button-led/internal/logic"
	"github.com/sweeney/button-led/internal/mqtt"
	"github.com/sweeney/button-led/internal/status"
	"github.com/sweeney/button-led/internal/sysfs"
	"github.com/sweeney/button-led/internal/web"
)

func main() {
	cfg, printState, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(cfg, printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// parseFlags builds the configuration: defaults, then the -config file if
// given, then any flag set explicitly on the command line.
func parseFlags(fs *flag.FlagSet, args []string) (config.Config, bool, error) {
	f := config.Default()

	configPath := fs.String("config", "", "YAML config file")
	fs.StringVar(&f.Backend, "backend", f.Backend, `GPIO backend ("sysfs" or "cdev")`)
	fs.StringVar(&f.Chip, "chip", f.Chip, "GPIO chip for the cdev backend")
	fs.StringVar(&f.SysfsRoot, "sysfs-root", f.SysfsRoot, "GPIO sysfs directory")
	fs.UintVar(&f.Pins.LED, "pin-led", f.Pins.LED, "BCM pin number of the LED")
	fs.UintVar(&f.Pins.Button1, "pin-button1", f.Pins.Button1, "BCM pin number of button 1")
	fs.UintVar(&f.Pins.Button2, "pin-button2", f.Pins.Button2, "BCM pin number of button 2")
	fs.DurationVar(&f.Poll, "poll", f.Poll, "Button polling interval")
	fs.DurationVar(&f.Blink, "blink", f.Blink, "LED blink half-period")
	fs.DurationVar(&f.Debounce, "debounce", f.Debounce, "Debounce duration for button events")
	fs.DurationVar(&f.Heartbeat, "heartbeat", f.Heartbeat, "Heartbeat interval (0 to disable)")
	fs.StringVar(&f.Broker, "broker", f.Broker, "MQTT broker address")
	fs.StringVar(&f.ClientID, "client-id", f.ClientID, "MQTT client ID")
	fs.StringVar(&f.HTTP, "http", f.HTTP, "HTTP status address (empty to disable)")
	printState := fs.Bool("print-state", false, "Print current button state and exit")

	if err := fs.Parse(args); err != nil {
		return f, false, err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return cfg, false, err
		}
		cfg = loaded
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "backend":
			cfg.Backend = f.Backend
		case "chip":
			cfg.Chip = f.Chip
		case "sysfs-root":
			cfg.SysfsRoot = f.SysfsRoot
		case "pin-led":
			cfg.Pins.LED = f.Pins.LED
		case "pin-button1":
			cfg.Pins.Button1 = f.Pins.Button1
		case "pin-button2":
			cfg.Pins.Button2 = f.Pins.Button2
		case "poll":
			cfg.Poll = f.Poll
		case "blink":
			cfg.Blink = f.Blink
		case "debounce":
			cfg.Debounce = f.Debounce
		case "heartbeat":
			cfg.Heartbeat = f.Heartbeat
		case "broker":
			cfg.Broker = f.Broker
		case "client-id":
			cfg.ClientID = f.ClientID
		case "http":
			cfg.HTTP = f.HTTP
		}
	})

	if err := cfg.Validate(); err != nil {
		return cfg, false, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, *printState, nil
}

// openBoard reserves the board pins on the configured backend. For sysfs
// the controller is returned too so callers can report reserved pins.
func openBoard(cfg config.Config, opts ...sysfs.Option) (gpio.Board, *sysfs.Controller, error) {
	switch cfg.Backend {
	case config.BackendCdev:
		board, err := gpio.NewCdevBoard(cfg.Chip, cfg.Pins.GPIO())
		if err != nil {
			return nil, nil, fmt.Errorf("init cdev board: %w", err)
		}
		return board, nil, nil

	default:
		opts = append([]sysfs.Option{
			sysfs.WithRoot(cfg.SysfsRoot),
			sysfs.WithLogger(log.Default()),
		}, opts...)
		ctrl := sysfs.NewController(opts...)
		board, err := gpio.NewSysfsBoard(ctrl, cfg.Pins.GPIO())
		if err != nil {
			return nil, nil, fmt.Errorf("init sysfs board: %w", err)
		}
		return board, ctrl, nil
	}
}

func run(cfg config.Config, printState bool) error {
	board, ctrl, err := openBoard(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := board.Close(); err != nil {
			log.Printf("release gpio: %v", err)
		}
	}()

	if printState {
		return writeState(os.Stdout, board)
	}

	publisher, err := mqtt.NewRealPublisher(cfg.Broker, cfg.ClientID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Tracker comes before STARTUP so the snapshot is available.
	tracker := status.NewTracker(time.Now(), status.Config{
		Backend:     cfg.Backend,
		PinLED:      cfg.Pins.LED,
		PinButton1:  cfg.Pins.Button1,
		PinButton2:  cfg.Pins.Button2,
		PollMs:      cfg.Poll.Milliseconds(),
		BlinkMs:     cfg.Blink.Milliseconds(),
		DebounceMs:  cfg.Debounce.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTP,
	})
	if ctrl != nil {
		tracker.SetReserved(ctrl.Reserved())
	}
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(publisher.IsConnected())

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP)
	}

	log.Printf("started: backend=%s led=%d buttons=%d,%d poll=%v blink=%v broker=%s",
		cfg.Backend, cfg.Pins.LED, cfg.Pins.Button1, cfg.Pins.Button2, cfg.Poll, cfg.Blink, cfg.Broker)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	s := settings{debounce: cfg.Debounce, heartbeat: cfg.Heartbeat, blink: cfg.Blink}
	return runLoop(board, publisher, publisher, tracker, s, time.Now, ticker.C, sigCh)
}

// settings are the timing parameters of runLoop.
type settings struct {
	debounce  time.Duration
	heartbeat time.Duration // 0 disables
	blink     time.Duration
}

func runLoop(board gpio.Board, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, s settings, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	detector := logic.NewDetector(s.debounce, startTime)
	var modes logic.ModeTracker

	for {
		select {
		case sg := <-sig:
			log.Printf("received %v, shutting down", sg)
			signalName := "UNKNOWN"
			if sg == syscall.SIGINT {
				signalName = "SIGINT"
			} else if sg == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			b1, b2, err := board.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				continue
			}

			mode := logic.Decide(b1, b2)
			if change := modes.Observe(mode, t); change != nil {
				detector.RecordModeChange()
				log.Printf("led: %s", change.Mode)
				if err := publisher.PublishMode(*change); err != nil {
					log.Printf("publish mode error: %v", err)
				}
			}
			if err := drive(board, mode, s.blink); err != nil {
				log.Printf("led error: %v", err)
			}

			events := detector.Process(logic.Input{B1: b1, B2: b2, Time: t})
			for _, event := range events {
				if event.Held > 0 {
					log.Printf("event: %s after %v (button1=%s button2=%s)", event.Type, event.Held, event.B1State, event.B2State)
				} else {
					log.Printf("event: %s (button1=%s button2=%s)", event.Type, event.B1State, event.B2State)
				}
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
				}
			}

			if hb := detector.CheckHeartbeat(t, s.heartbeat); hb != nil {
				log.Printf("heartbeat: uptime=%v b1=%d/%d b2=%d/%d mode_changes=%d",
					hb.Uptime, hb.Counts.B1Pressed, hb.Counts.B1Released,
					hb.Counts.B2Pressed, hb.Counts.B2Released, hb.Counts.ModeChanges)

				hbEvent := mqtt.SystemEvent{Timestamp: hb.Timestamp, Event: "HEARTBEAT"}
				if tracker != nil {
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					updateTracker(tracker, detector, modes.Current(), mqttStatus)
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			if tracker != nil {
				updateTracker(tracker, detector, modes.Current(), mqttStatus)
			}
		}
	}
}

// drive applies one tick of mode to the LED. Blink blocks for two blink
// periods.
func drive(led gpio.LED, mode logic.Mode, blink time.Duration) error {
	switch mode {
	case logic.ModeOn:
		return led.Set(true)
	case logic.ModeBlink:
		return led.Blink(blink)
	default:
		return led.Set(false)
	}
}

func updateTracker(tracker *status.Tracker, detector *logic.Detector, mode logic.Mode, mqttStatus mqtt.ConnectionStatus) {
	b1, b2 := detector.CurrentState()
	tracker.Update(b1, b2, mode, detector.IsBaselined(), detector.EventCountsSnapshot())
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}

// writeState prints one reading of both buttons and the LED mode it maps to.
func writeState(w io.Writer, r gpio.Reader) error {
	b1, b2, err := r.Read()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	_, err = fmt.Fprintf(w, "button1: %s, button2: %s, led: %s\n",
		stateString(b1), stateString(b2), logic.Decide(b1, b2))
	return err
}

func stateString(pressed bool) logic.State {
	if pressed {
		return logic.StatePressed
	}
	return logic.StateReleased
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
