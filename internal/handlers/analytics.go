package handlers

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
    GA4MeasurementID string // e.g. G-XXXXXXXXXX
}

// Enabled reports whether the analytics snippet should render.
func (a Analytics) Enabled() bool { return a.GA4MeasurementID != "" }
