package truetime

// Option configures a Handle at Open time.
type Option func(*config)

type config struct {
	ptpPath             string
	acceptLegacyCRC     bool
	tolerateCRCMismatch bool
	samplesPerProbe     uint32
}

func defaultConfig() config {
	return config{
		ptpPath:         "/dev/fbclock/ptp",
		acceptLegacyCRC: true,
		samplesPerProbe: 1,
	}
}

// WithPTPPath overrides the default PHC device path
// ("/dev/fbclock/ptp").
func WithPTPPath(path string) Option {
	return func(c *config) { c.ptpPath = path }
}

// WithLegacyCRC toggles whether the v1 reader also accepts the legacy
// CRC convention (seed 0x04C11DB7, no final XOR), for interop with older
// daemon builds during rollout. Defaults to true.
func WithLegacyCRC(accept bool) Option {
	return func(c *config) { c.acceptLegacyCRC = accept }
}

// WithTolerateCRCMismatch restores the historical v1 behavior of
// returning the last-read (possibly torn) payload instead of
// ErrCRCMismatch when the retry budget is exhausted. Defaults to false:
// this library reports the mismatch, per spec §9 Open Question #1's
// guidance that re-implementations should default to reporting it.
func WithTolerateCRCMismatch(tolerate bool) Option {
	return func(c *config) { c.tolerateCRCMismatch = tolerate }
}

// WithSamplesPerProbe overrides how many samples are requested per PHC
// ioctl call. Defaults to 1; older revisions of this protocol used 5.
func WithSamplesPerProbe(n uint32) Option {
	return func(c *config) { c.samplesPerProbe = n }
}
