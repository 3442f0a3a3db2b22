package dht

// Probe classifies an auto-detect device. It assumes DHT22 start timing and
// runs one transaction, bypassing the rate limiter. A DHT11 ignores the short
// start pulse and never answers, so a Timeout reclassifies it as DHT11.
//
// The probe consumes a read cycle and its Timeout stays visible in Status.
// Callers cannot tell a missing device from a freshly detected DHT11 on that
// first call. It runs once; a resolved model is never re-evaluated, and Probe
// on a resolved device only reports the current model and stored status.
//
// After a DHT11 is detected the next getter inside the 999 ms window returns
// the probe's stored outcome without touching the line.
func (d *Device) Probe() (Model, Status) {
	if d.model != AutoDetect {
		return d.model, d.status
	}
	d.model = DHT22
	d.read(false)
	if d.status == StatusTimeout {
		d.model = DHT11
	}
	return d.model, d.status
}
