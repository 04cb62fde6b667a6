package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sigmakib2/serialconsole/internal/app"
	"github.com/Sigmakib2/serialconsole/internal/config"
	"github.com/Sigmakib2/serialconsole/internal/feed"
	"github.com/Sigmakib2/serialconsole/internal/session"
	"github.com/Sigmakib2/serialconsole/internal/sysinfo"
	"github.com/Sigmakib2/serialconsole/internal/transport"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	portPath := flag.String("port", "", "Serial device path (e.g. /dev/ttyUSB0)")
	baud := flag.Int("baud", 0, "Override baud rate")
	configPath := flag.String("config", "serialconsole.yaml", "Path to config file")
	headless := flag.Bool("headless", false, "Run without the TUI, logging to stdout")
	list := flag.Bool("list", false, "List available serial ports and exit")
	flag.Parse()

	if *list {
		ports := transport.ListPorts()
		if len(ports) == 0 {
			fmt.Println("no serial ports found")
			return
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *portPath != "" {
		cfg.Serial.Port = *portPath
	}
	if *baud > 0 {
		cfg.Serial.Baud = *baud
	}
	if cfg.Serial.Port == "" {
		fmt.Fprintln(os.Stderr, "no serial port given; use -port or set serial.port in the config")
		if ports := transport.ListPorts(); len(ports) > 0 {
			fmt.Fprintf(os.Stderr, "available: %v\n", ports)
		}
		os.Exit(1)
	}

	sess := session.New(cfg.Serial.Port, cfg.Serial.Baud, transport.SystemOpener, session.Options{
		LineEnding: session.ParseLineEnding(cfg.Serial.LineEnding),
		StatsTick:  cfg.Serial.StatsTick,
		Footprint:  sysinfo.Sample,
	})

	var broadcaster *feed.Broadcaster
	if cfg.Feed.Enabled {
		broadcaster = feed.NewBroadcaster(sess.Snapshot, cfg.Feed.BroadcastThrottle, cfg.Feed.SnapshotInterval)
		defer broadcaster.Stop()
		go func() {
			if err := feed.ListenAndServe(cfg.Feed.Host, cfg.Feed.Port, sess, broadcaster); err != nil {
				log.Printf("feed server error: %v", err)
			}
		}()
	}

	if *headless {
		runHeadless(sess, broadcaster)
		return
	}
	runTUI(sess, broadcaster, cfg)
}

func runHeadless(sess *session.Session, broadcaster *feed.Broadcaster) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		sess.Shutdown()
	}()

	sess.Start()
	for ev := range sess.Events() {
		if broadcaster != nil {
			broadcaster.Publish(ev)
		}
		switch ev.Kind {
		case session.KindStatsTick:
			// Too chatty for a log.
		case session.KindHex:
			log.Printf("hex % X", ev.Raw)
		default:
			if ev.Outbound {
				log.Printf("> %s", ev.Payload)
			} else {
				log.Printf("%s", ev.Payload)
			}
		}
	}
}

func runTUI(sess *session.Session, broadcaster *feed.Broadcaster, cfg *config.Config) {
	// The TUI owns the terminal; route stdlib logging away from it.
	if cfg.UI.LogFile != "" {
		f, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	m := app.New(sess, cfg.UI.Scrollback)
	if broadcaster != nil {
		m.Clients = broadcaster.ClientCount
	}
	p := tea.NewProgram(m, tea.WithAltScreen())

	go func() {
		for ev := range sess.Events() {
			if broadcaster != nil {
				broadcaster.Publish(ev)
			}
			p.Send(app.EventMsg{Event: ev})
		}
	}()

	sess.Start()
	_, runErr := p.Run()
	sess.Shutdown()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}
