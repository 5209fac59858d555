// Package gui is the Fyne desktop front end. It maps button presses to
// session operations, runs them off the UI thread and shows their results:
// the image preview, the caption, and warning dialogs for translation and
// audio failures.
package gui
