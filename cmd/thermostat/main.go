// Command thermostat runs the closed-loop heat controller on a Linux board:
// it samples the I²C temperature sensor, drives the heat output, streams a
// status frame over serial every second and publishes transitions to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/thermostat/internal/config"
	"github.com/sweeney/thermostat/internal/control"
	"github.com/sweeney/thermostat/internal/gpio"
	"github.com/sweeney/thermostat/internal/logging"
	"github.com/sweeney/thermostat/internal/logic"
	"github.com/sweeney/thermostat/internal/mqtt"
	"github.com/sweeney/thermostat/internal/sensor"
	"github.com/sweeney/thermostat/internal/serial"
	"github.com/sweeney/thermostat/internal/status"
	"github.com/sweeney/thermostat/internal/timer"
	"github.com/sweeney/thermostat/internal/web"
)

// cycleQueue is how many cycles the reporting loop may fall behind by
// before the control loop starts dropping them.
const cycleQueue = 16

func main() {
	configPath := flag.String("config", "/etc/thermostat/config.yaml", "Path to YAML config file")
	printState := flag.Bool("print-state", false, "Read the sensor once, print the temperature and frame, and exit")
	listPorts := flag.Bool("list-ports", false, "List serial ports and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	switch {
	case *listPorts:
		err = printPorts(os.Stdout)
	case *printState:
		err = printOnce(cfg, os.Stdout)
	default:
		err = run(cfg, log)
	}
	if err != nil {
		msg, fields := failure(err)
		log.Fatalw(msg, fields...)
	}
}

// failure describes err for the fatal log line, naming the resource when
// bring-up failed.
func failure(err error) (string, []interface{}) {
	var ie *control.InitError
	if errors.As(err, &ie) {
		return "initialisation failed", []interface{}{"resource", ie.Resource, "error", ie.Err}
	}
	return "fatal", []interface{}{"error", err}
}

func printPorts(w io.Writer) error {
	ports, err := serial.Ports()
	if err != nil {
		return err
	}
	for _, p := range ports {
		fmt.Fprintln(w, p)
	}
	return nil
}

// printOnce reads the sensor once and prints what the first sampled cycle
// would report at the power-on setpoint.
func printOnce(cfg *config.Config, w io.Writer) error {
	bus, err := sensor.OpenBus(cfg.Sensor.Bus)
	if err != nil {
		return control.Fatal(control.ResourceI2C, err)
	}
	defer bus.Close()

	return printReading(sensor.NewReader(bus, cfg.Profile()), w)
}

func printReading(r control.TemperatureReader, w io.Writer) error {
	t, err := r.Read()
	if err != nil {
		return fmt.Errorf("read sensor: %w", err)
	}
	c := logic.Cycle{
		Temperature: t,
		SetPoint:    logic.InitialSetPoint,
		Heat:        logic.HeatOn(t, logic.InitialSetPoint),
		Sampled:     true,
	}
	fmt.Fprintf(w, "temperature: %v (raw %d)\nframe: %s\n", t, int16(t), logic.FormatFrame(c))
	return nil
}

func run(cfg *config.Config, log *zap.SugaredLogger) error {
	profile := cfg.Profile()

	// Bring-up order matches the board: serial, I²C, GPIO, then the timer
	// inside control.Start.
	port, err := serial.Open(serial.Config{Port: cfg.Serial.Port, Baud: cfg.Serial.Baud})
	if err != nil {
		return control.Fatal(control.ResourceSerial, err)
	}
	defer port.Close()

	bus, err := sensor.OpenBus(cfg.Sensor.Bus)
	if err != nil {
		return control.Fatal(control.ResourceI2C, err)
	}
	defer bus.Close()

	heater, err := gpio.NewRealOutput(cfg.GPIO.Chip, cfg.GPIO.HeatPin)
	if err != nil {
		return control.Fatal(control.ResourceGPIO, err)
	}
	defer heater.Close()

	buttons, err := gpio.NewRealButtons(cfg.GPIO.Chip, cfg.GPIO.IncreasePin, cfg.GPIO.DecreasePin, cfg.GPIO.Debounce)
	if err != nil {
		return control.Fatal(control.ResourceGPIO, err)
	}
	defer buttons.Close()

	ticker := timer.NewPeriodic(logic.TickPeriod)
	defer ticker.Stop()

	tracker := status.NewTracker(time.Now(), statusConfig(cfg, profile))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	publisher, mqttStatus, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	cycles := make(chan logic.Cycle, cycleQueue)
	loop, err := control.Start(control.Board{
		Sensor:   sensor.NewReader(bus, profile),
		Heater:   heater,
		Reporter: serial.NewReporter(port),
		Buttons:  buttons,
		Ticker:   ticker,
	}, control.WithLogger(log), control.WithCycleHook(queueCycle(cycles, tracker)))
	if err != nil {
		return err
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Warnf("failed to publish startup event: %v", err)
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Infof("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Infow("started",
		"serial", cfg.Serial.Port,
		"sensor", profile.ID,
		"address", fmt.Sprintf("%#02x", profile.Address),
		"broker", cfg.MQTT.Broker,
		"heartbeat", cfg.MQTT.Heartbeat,
	)

	ctx, cancel := context.WithCancel(context.Background())
	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	err = runLoop(cycles, publisher, mqttStatus, tracker, cfg.MQTT.Heartbeat, time.Now, sigCh, log)
	cancel()
	<-loopDone
	return err
}

func newPublisher(cfg *config.Config, log *zap.SugaredLogger) (mqtt.Publisher, mqtt.ConnectionStatus, error) {
	if cfg.MQTT.Broker == "" {
		log.Infof("mqtt disabled")
		return mqtt.Discard{}, mqtt.Discard{}, nil
	}
	will, err := mqtt.FormatSystemPayload(mqtt.SystemEvent{Event: "OFFLINE", Reason: "MQTT_DISCONNECT"})
	if err != nil {
		return nil, nil, err
	}
	p, err := mqtt.NewRealPublisher(mqtt.Options{
		Broker:     cfg.MQTT.Broker,
		ClientID:   cfg.MQTT.ClientID,
		BufferSize: cfg.MQTT.BufferSize,
		Will:       will,
	}, log.Named("mqtt"))
	if err != nil {
		return nil, nil, err
	}
	return p, p, nil
}

// queueCycle hands cycles from the control loop to the reporting loop
// without ever blocking the control loop.
func queueCycle(cycles chan<- logic.Cycle, tracker *status.Tracker) func(logic.Cycle) {
	return func(c logic.Cycle) {
		select {
		case cycles <- c:
		default:
			tracker.AddDroppedCycle()
		}
	}
}

func statusConfig(cfg *config.Config, profile logic.SensorProfile) status.Config {
	return status.Config{
		Profile:       profile.ID,
		SensorAddress: profile.Address,
		SerialPort:    cfg.Serial.Port,
		Baud:          cfg.Serial.Baud,
		TickMs:        logic.TickPeriod.Milliseconds(),
		SampleEvery:   logic.SampleEvery,
		HeartbeatMs:   cfg.MQTT.Heartbeat.Milliseconds(),
		Broker:        cfg.MQTT.Broker,
		HTTPPort:      cfg.HTTP.Addr,
	}
}

// runLoop consumes completed cycles: it derives transition events, keeps the
// status tracker current and publishes events and heartbeats. It returns
// after publishing SHUTDOWN on a signal, or when cycles is closed.
func runLoop(cycles <-chan logic.Cycle, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, sig <-chan os.Signal, log *zap.SugaredLogger) error {
	monitor := logic.NewMonitor(now())

	for {
		select {
		case s := <-sig:
			log.Infof("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
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
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Warnf("failed to publish shutdown event: %v", err)
			} else {
				log.Infof("published shutdown event")
			}
			return nil

		case c, ok := <-cycles:
			if !ok {
				return nil
			}
			t := now()

			if c.SampleFailed {
				log.Debugf("cycle %d: sensor read failed (%d total)", c.Elapsed, c.SensorFailures)
			}

			for _, event := range monitor.Process(c, t) {
				log.Infof("event: %s (temp=%v setpoint=%d heat=%v)", event.Type, c.Temperature, c.SetPoint, c.Heat)
				if err := publisher.Publish(event); err != nil {
					log.Warnf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(c, monitor.Counts())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			if hbData := monitor.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Infof("heartbeat: uptime=%v heat_on=%d heat_off=%d setpoint_changes=%d",
					hbData.Uptime, hbData.Counts.HeatOn, hbData.Counts.HeatOff, hbData.Counts.SetPointChanges)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Warnf("heartbeat publish error: %v", err)
				}
			}
		}
	}
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
