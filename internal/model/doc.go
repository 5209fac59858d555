// Package model loads the pretrained networks through ONNX Runtime: the
// image encoder that produces feature vectors and the caption decoder that
// predicts the next word. Both are loaded once per process and are read-only
// afterwards.
package model
