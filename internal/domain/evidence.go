package domain

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Evidence is the caller-supplied verification context: contextual signals
// gathered at verification time and matched against the recorded signature.
// It is never persisted by the engine.
type Evidence struct {
	Biometric         *BiometricSample `json:"biometric_data,omitempty"`
	DeviceFingerprint string           `json:"device_fingerprint,omitempty"`
	TrustedDevices    []string         `json:"trusted_devices,omitempty"`
	ExpectedLocation  *Coordinates     `json:"expected_location,omitempty"`
	ActualLocation    *Coordinates     `json:"actual_location,omitempty"`
}

// TrustedDeviceSet returns the trusted device fingerprints as a set for
// membership tests. Empty entries are dropped so a blank fingerprint can never
// match an enrollment.
func (e Evidence) TrustedDeviceSet() map[string]struct{} {
	set := make(map[string]struct{}, len(e.TrustedDevices))
	for _, fp := range e.TrustedDevices {
		if fp != "" {
			set[fp] = struct{}{}
		}
	}
	return set
}
