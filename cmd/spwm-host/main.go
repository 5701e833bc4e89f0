// spwm-host synthesizes SPWM lookup tables for a unipolar H-bridge
// driver and delivers them to the driver board.
//
// Usage:
//
//	spwm-host -config inverter.cfg [options]
//	spwm-host -freq 50 -mf 256 -ma 0.8 [options]
//
// Options:
//
//	-config string   Inverter configuration file
//	-freq uint       Signal frequency in Hz (overrides config)
//	-mf uint         Carrier-to-signal frequency ratio
//	-ma float        Amplitude modulation ratio
//	-device string   Serial device to stream tables to
//	-socket string   Unix socket of a driver simulator
//	-wav string      Export the bridge waveform to a WAV file
//	-monitor string  Serve the monitor API on this address
//	-print           Print the synthesized tables to stdout
//
// Examples:
//
//	# Synthesize and print a 50 Hz table
//	spwm-host -freq 50 -mf 256 -ma 0.8 -print
//
//	# Load a config, stream to hardware and keep the monitor running
//	spwm-host -config inverter.cfg -monitor :9200
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spwm-host/pkg/analysis"
	"spwm-host/pkg/compensate"
	"spwm-host/pkg/config"
	"spwm-host/pkg/log"
	"spwm-host/pkg/metrics"
	"spwm-host/pkg/monitor"
	"spwm-host/pkg/spwm"
	"spwm-host/pkg/stream"
	"spwm-host/pkg/wavexport"
)

var mainLog = log.GetLogger("host")

func main() {
	configFile := flag.String("config", "", "Inverter configuration file")
	freq := flag.Uint("freq", 0, "Signal frequency in Hz (overrides config)")
	mf := flag.Uint("mf", 0, "Carrier-to-signal frequency ratio")
	ma := flag.Float64("ma", 0, "Amplitude modulation ratio")
	device := flag.String("device", "", "Serial device to stream tables to")
	socket := flag.String("socket", "", "Unix socket of a driver simulator")
	wavPath := flag.String("wav", "", "Export the bridge waveform to a WAV file")
	monitorAddr := flag.String("monitor", "", "Serve the monitor API on this address")
	printTables := flag.Bool("print", false, "Print the synthesized tables to stdout")
	flag.Parse()

	hc, err := resolveConfig(*configFile, *freq, *mf, *ma)
	if err != nil {
		mainLog.WithError(err).Error("configuration rejected")
		os.Exit(1)
	}
	if *device != "" {
		hc.StreamEnabled = true
		hc.Device = *device
	}
	if *wavPath != "" {
		hc.WAVPath = *wavPath
	}
	if *monitorAddr != "" {
		hc.MonitorEnabled = true
		hc.MonitorAddr = *monitorAddr
	}

	if err := run(hc, *socket, *printTables); err != nil {
		mainLog.WithError(err).Error("host failed")
		os.Exit(1)
	}
}

// resolveConfig builds the host configuration from a config file, flag
// overrides, or both.
func resolveConfig(path string, freq, mf uint, ma float64) (*config.HostConfig, error) {
	var hc *config.HostConfig
	if path != "" {
		parsed, err := config.ParseHostConfig(path)
		if err != nil {
			return nil, err
		}
		hc = parsed
	} else {
		hc = &config.HostConfig{
			DeadTime:             config.DefaultDeadTime,
			DeadTimeCompensation: config.DefaultDeadTimeCompensation,
			ExecDelay:            config.DefaultExecDelay,
			Baud:                 115200,
			MonitorAddr:          ":9200",
			WAVSampleRate:        48000,
			MaxHarmonic:          50,
		}
	}
	if freq != 0 {
		hc.SignalFreq = uint32(freq)
	}
	if mf != 0 {
		hc.MF = uint32(mf)
	}
	if ma != 0 {
		hc.MA = ma
	}
	return hc, nil
}

func run(hc *config.HostConfig, socket string, printTables bool) error {
	hm := metrics.GlobalMetrics()

	params := spwm.Params{SignalFreq: hc.SignalFreq, MF: hc.MF, MA: hc.MA}
	mainLog.WithField("freq", params.SignalFreq).
		WithField("mf", params.MF).
		WithField("ma", params.MA).
		Info("synthesizing tables")

	start := time.Now()
	tbl, err := spwm.Synthesize(params)
	elapsed := time.Since(start)
	if err != nil {
		hm.ObserveSynthesis(elapsed, 0, 0, 0, 0, err)
		return err
	}
	hm.ObserveSynthesis(elapsed, params.TableLen(), tbl.SignalDuration,
		tbl.FineScanSteps, tbl.Crossings, nil)
	mainLog.WithField("h1_sync", tbl.H1Sync).
		WithField("h2_sync", tbl.H2Sync).
		WithField("signal_duration", tbl.SignalDuration).
		Info("tables ready")

	var spectrum *analysis.Spectrum
	if sp, err := analysis.Analyze(tbl, hc.MaxHarmonic); err != nil {
		mainLog.WithError(err).Warn("spectrum analysis skipped")
	} else {
		spectrum = sp
		hm.ObserveAnalysis(sp.Fundamental, sp.THD)
		mainLog.WithField("fundamental", fmt.Sprintf("%.4f", sp.Fundamental)).
			WithField("thd", fmt.Sprintf("%.4f", sp.THD)).
			Info("spectrum analyzed")
	}

	if printTables {
		dumpTables(tbl)
	}

	if hc.WAVPath != "" {
		cfg := wavexport.Config{
			SampleRate: hc.WAVSampleRate,
			SignalFreq: hc.SignalFreq,
		}
		if err := wavexport.Export(hc.WAVPath, tbl, cfg); err != nil {
			return err
		}
	}

	if hc.StreamEnabled || socket != "" {
		if err := streamTables(hc, socket, params, tbl, hm); err != nil {
			return err
		}
	}

	if hc.MonitorEnabled {
		return serveMonitor(hc.MonitorAddr, params, tbl, spectrum)
	}
	return nil
}

// streamTables compensates the tables and sends them to the driver.
func streamTables(hc *config.HostConfig, socket string, params spwm.Params,
	tbl *spwm.Tables, hm *metrics.HostMetrics) error {
	settings := compensate.Settings{
		DeadTime:             hc.DeadTime,
		DeadTimeCompensation: hc.DeadTimeCompensation,
		ExecDelay:            hc.ExecDelay,
	}
	comp, err := compensate.Apply(settings, tbl)
	if err != nil {
		return err
	}
	frame := stream.NewFrame(params, tbl.SignalDuration, comp)

	var port *stream.Port
	if socket != "" {
		port, err = stream.OpenSocket(socket, 10*time.Second)
	} else {
		cfg := stream.DefaultPortConfig()
		cfg.Device = hc.Device
		cfg.BaudRate = hc.Baud
		port, err = stream.OpenPort(cfg)
	}
	if err != nil {
		return err
	}
	defer port.Close()

	err = stream.Send(port, frame)
	hm.ObserveFrame(frame.EncodedSize(), err)
	return err
}

// serveMonitor publishes the result and blocks until interrupted.
func serveMonitor(addr string, params spwm.Params, tbl *spwm.Tables,
	spectrum *analysis.Spectrum) error {
	srv := monitor.NewServer(addr)
	srv.Publish(params, tbl, spectrum)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		mainLog.WithField("signal", sig.String()).Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// dumpTables prints the tables in the array layout the driver firmware
// uses, eight entries per line.
func dumpTables(tbl *spwm.Tables) {
	fmt.Printf("h1_sync = %d, h2_sync = %d, signal_duration = %d\n",
		tbl.H1Sync, tbl.H2Sync, tbl.SignalDuration)
	dumpTable("h1_table", tbl.H1)
	dumpTable("h2_table", tbl.H2)
}

func dumpTable(name string, entries []uint32) {
	fmt.Printf("%s[%d] = {\n", name, len(entries))
	for i, d := range entries {
		if i%8 == 0 {
			fmt.Print("    ")
		}
		fmt.Printf("%6d", d)
		if i != len(entries)-1 {
			fmt.Print(",")
		}
		if i%8 == 7 || i == len(entries)-1 {
			fmt.Println()
		} else {
			fmt.Print(" ")
		}
	}
	fmt.Println("}")
}
