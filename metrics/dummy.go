package metrics

// Dummy discards all observations.
var Dummy Registry = dummy{}

type dummy struct{}

func (dummy) WithPrefix(string) Registry     { return Dummy }
func (dummy) Counter(string, Labels) Counter { return dummyCounter{} }
func (dummy) Gauge(string, Labels) Gauge     { return dummyGauge{} }

type dummyCounter struct{}

func (dummyCounter) Inc()        {}
func (dummyCounter) Add(float64) {}

type dummyGauge struct{}

func (dummyGauge) Set(float64) {}
func (dummyGauge) Inc()        {}
func (dummyGauge) Dec()        {}
func (dummyGauge) Add(float64) {}
func (dummyGauge) Sub(float64) {}
