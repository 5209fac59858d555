// Package session sequences the captioning pipeline for one image at a time.
//
// A Session moves through NoImage, ImageLoaded, CaptionReady and
// AudioReady. Failures never change the state; they are returned to the
// caller, which shows them and lets the user retry. Pipeline operations are
// serialised and readers always see a complete snapshot.
package session
