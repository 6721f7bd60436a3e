package tui

// pulseEndMsg ends the update highlight started by the live sample with the
// same sequence number. Older pulses are ignored.
type pulseEndMsg struct{ seq int }
