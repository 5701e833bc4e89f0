package config

import (
	"testing"

	"spwm-host/pkg/errors"
)

const sampleConfig = `
# host configuration
[inverter]
signal_freq: 50
mf: 256
ma: 0.8

[deadtime]
dead_time: 50
deadtime_compensation: 2
exec_delay: 3

[monitor]
enabled: true
address: :9200
`

func TestLoadString(t *testing.T) {
	c, err := LoadString(sampleConfig)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	if !c.HasSection("inverter") {
		t.Fatal("missing [inverter] section")
	}

	sec, err := c.GetSection("inverter")
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}

	freq, err := sec.GetInt("signal_freq")
	if err != nil || freq != 50 {
		t.Errorf("signal_freq = %d (%v), want 50", freq, err)
	}
	ma, err := sec.GetFloat("ma")
	if err != nil || ma != 0.8 {
		t.Errorf("ma = %f (%v), want 0.8", ma, err)
	}
}

func TestMissingSection(t *testing.T) {
	c, _ := LoadString(sampleConfig)
	_, err := c.GetSection("bogus")
	if !errors.Is(err, errors.ErrConfigSection) {
		t.Errorf("expected CONFIG_SECTION error, got %v", err)
	}
}

func TestGetWithFallback(t *testing.T) {
	c, _ := LoadString(sampleConfig)
	sec, _ := c.GetSection("monitor")

	addr, err := sec.Get("address", ":7000")
	if err != nil || addr != ":9200" {
		t.Errorf("address = %q (%v), want :9200", addr, err)
	}
	missing, err := sec.Get("no_such_option", "default")
	if err != nil || missing != "default" {
		t.Errorf("fallback = %q (%v), want default", missing, err)
	}
}

func TestFloatBounds(t *testing.T) {
	c, _ := LoadString("[inverter]\nma: 1.2\n")
	sec, _ := c.GetSection("inverter")

	zero, unity := 0.0, 1.0
	_, err := sec.GetFloatWithBounds("ma", FloatBounds{Above: &zero, Below: &unity})
	if !errors.Is(err, errors.ErrConfigValidation) {
		t.Errorf("expected CONFIG_VALIDATION error, got %v", err)
	}
}

func TestUnusedTracking(t *testing.T) {
	c, _ := LoadString(sampleConfig)

	// Only touch [inverter]
	sec, _ := c.GetSection("inverter")
	_, _ = sec.GetInt("signal_freq")

	unused := c.GetUnusedSections()
	if len(unused) != 2 {
		t.Errorf("unused sections = %v, want [deadtime monitor]", unused)
	}
	if err := c.CheckUnusedSections(); err == nil {
		t.Error("CheckUnusedSections should fail with untouched sections")
	}
}

func TestHostConfigFrom(t *testing.T) {
	c, _ := LoadString(sampleConfig)
	hc, err := HostConfigFrom(c)
	if err != nil {
		t.Fatalf("HostConfigFrom failed: %v", err)
	}

	if hc.SignalFreq != 50 || hc.MF != 256 || hc.MA != 0.8 {
		t.Errorf("inverter params = %d/%d/%f", hc.SignalFreq, hc.MF, hc.MA)
	}
	if hc.DeadTime != 50 || hc.DeadTimeCompensation != 2 || hc.ExecDelay != 3 {
		t.Errorf("deadtime params = %d/%d/%d", hc.DeadTime, hc.DeadTimeCompensation, hc.ExecDelay)
	}
	if !hc.MonitorEnabled || hc.MonitorAddr != ":9200" {
		t.Errorf("monitor = %v %q", hc.MonitorEnabled, hc.MonitorAddr)
	}
	// Defaults for absent sections
	if hc.StreamEnabled {
		t.Error("stream should be disabled when section absent")
	}
	if hc.WAVSampleRate != 48000 {
		t.Errorf("wav sample rate default = %d", hc.WAVSampleRate)
	}
}

func TestHostConfigRejectsBadMF(t *testing.T) {
	c, _ := LoadString("[inverter]\nsignal_freq: 50\nmf: 250\nma: 0.8\n")
	_, err := HostConfigFrom(c)
	if !errors.Is(err, errors.ErrConfigValidation) {
		t.Errorf("mf=250 should be rejected, got %v", err)
	}
}

func TestHostConfigStreamNeedsDevice(t *testing.T) {
	c, _ := LoadString("[inverter]\nsignal_freq: 50\nmf: 256\nma: 0.8\n[stream]\nenabled: true\n")
	_, err := HostConfigFrom(c)
	if !errors.Is(err, errors.ErrConfigOption) {
		t.Errorf("enabled stream without device should fail, got %v", err)
	}
}
