// Package processor wires the captioning pipeline together. It opens the
// exported networks, builds the translation and speech adapters from the
// resolved settings and drives a session either once from the terminal or
// through the GUI.
package processor
