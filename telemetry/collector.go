package telemetry

// Collector accumulates the census series for a run and decides which
// censuses are written out.
type Collector struct {
	interval int
	series   []Census
}

// NewCollector creates a new census collector.
// interval: ticks between flushed rows (values below 1 flush every tick)
func NewCollector(interval int) *Collector {
	if interval < 1 {
		interval = 1
	}
	return &Collector{
		interval: interval,
		series:   make([]Census, 0, 256),
	}
}

// Record stores c and reports whether it falls on a flush boundary.
func (c *Collector) Record(census Census) bool {
	c.series = append(c.series, census)
	return census.Tick%c.interval == 0
}

// Latest returns the most recent census, or false if none was recorded.
func (c *Collector) Latest() (Census, bool) {
	if len(c.series) == 0 {
		return Census{}, false
	}
	return c.series[len(c.series)-1], true
}

// Series returns every recorded census in order.
func (c *Collector) Series() []Census {
	return c.series
}
