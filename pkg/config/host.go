package config

// HostConfig is the typed view of an SPWM host configuration file.
// It covers the [inverter], [deadtime], [stream], [monitor] and [export]
// sections; everything except [inverter] is optional.
type HostConfig struct {
	// [inverter]
	SignalFreq uint32  // target AC output frequency, Hz
	MF         uint32  // carrier-to-signal frequency ratio
	MA         float64 // amplitude modulation ratio

	// [deadtime]
	DeadTime             uint32
	DeadTimeCompensation uint32
	ExecDelay            uint32

	// [stream]
	StreamEnabled bool
	Device        string
	Baud          int

	// [monitor]
	MonitorEnabled bool
	MonitorAddr    string

	// [export]
	WAVPath       string
	WAVSampleRate int
	MaxHarmonic   int
}

// Default compensation counts from the reference driver firmware.
const (
	DefaultDeadTime             = 50
	DefaultDeadTimeCompensation = 2
	DefaultExecDelay            = 3
)

// ParseHostConfig reads a config file into a HostConfig. Sections or
// options the host does not know are rejected, so a typo cannot
// silently fall back to a default.
func ParseHostConfig(path string) (*HostConfig, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	hc, err := HostConfigFrom(c)
	if err != nil {
		return nil, err
	}
	if err := c.CheckUnusedSections(); err != nil {
		return nil, err
	}
	if err := c.CheckUnusedOptions(); err != nil {
		return nil, err
	}
	return hc, nil
}

// HostConfigFrom extracts a HostConfig from an already parsed Config.
func HostConfigFrom(c *Config) (*HostConfig, error) {
	hc := &HostConfig{
		DeadTime:             DefaultDeadTime,
		DeadTimeCompensation: DefaultDeadTimeCompensation,
		ExecDelay:            DefaultExecDelay,
		Baud:                 115200,
		MonitorAddr:          ":9200",
		WAVSampleRate:        48000,
		MaxHarmonic:          50,
	}

	inv, err := c.GetSection("inverter")
	if err != nil {
		return nil, err
	}

	one := 1
	freq, err := inv.GetIntWithBounds("signal_freq", &one, nil)
	if err != nil {
		return nil, err
	}
	hc.SignalFreq = uint32(freq)

	mf, err := inv.GetIntWithBounds("mf", &one, nil)
	if err != nil {
		return nil, err
	}
	if mf%4 != 0 {
		return nil, ErrValidation("inverter", "mf", "must be a multiple of 4")
	}
	hc.MF = uint32(mf)

	zero, unity := 0.0, 1.0
	ma, err := inv.GetFloatWithBounds("ma", FloatBounds{Above: &zero, Below: &unity})
	if err != nil {
		return nil, err
	}
	hc.MA = ma

	if sec := c.GetSectionOptional("deadtime"); sec != nil {
		z := 0
		dt, err := sec.GetIntWithBounds("dead_time", &z, nil, DefaultDeadTime)
		if err != nil {
			return nil, err
		}
		dtc, err := sec.GetIntWithBounds("deadtime_compensation", &z, nil, DefaultDeadTimeCompensation)
		if err != nil {
			return nil, err
		}
		ed, err := sec.GetIntWithBounds("exec_delay", &z, nil, DefaultExecDelay)
		if err != nil {
			return nil, err
		}
		hc.DeadTime = uint32(dt)
		hc.DeadTimeCompensation = uint32(dtc)
		hc.ExecDelay = uint32(ed)
	}

	if sec := c.GetSectionOptional("stream"); sec != nil {
		enabled, err := sec.GetBool("enabled", true)
		if err != nil {
			return nil, err
		}
		device, err := sec.Get("device", "")
		if err != nil {
			return nil, err
		}
		baud, err := sec.GetInt("baud", 115200)
		if err != nil {
			return nil, err
		}
		if enabled && device == "" {
			return nil, ErrMissingOption("stream", "device")
		}
		hc.StreamEnabled = enabled
		hc.Device = device
		hc.Baud = baud
	}

	if sec := c.GetSectionOptional("monitor"); sec != nil {
		enabled, err := sec.GetBool("enabled", true)
		if err != nil {
			return nil, err
		}
		addr, err := sec.Get("address", ":9200")
		if err != nil {
			return nil, err
		}
		hc.MonitorEnabled = enabled
		hc.MonitorAddr = addr
	}

	if sec := c.GetSectionOptional("export"); sec != nil {
		path, err := sec.Get("wav_path", "")
		if err != nil {
			return nil, err
		}
		one := 1
		rate, err := sec.GetIntWithBounds("sample_rate", &one, nil, 48000)
		if err != nil {
			return nil, err
		}
		maxH, err := sec.GetIntWithBounds("max_harmonic", &one, nil, 50)
		if err != nil {
			return nil, err
		}
		hc.WAVPath = path
		hc.WAVSampleRate = rate
		hc.MaxHarmonic = maxH
	}

	return hc, nil
}
