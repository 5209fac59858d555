// Package feature turns an image file into the fixed-length feature vector
// the caption decoder consumes. Images are decoded, converted to RGB,
// resampled to the encoder's square input size and rescaled to [-1, 1]
// before being embedded.
package feature
