// Package caption decodes a feature vector into a caption using greedy
// autoregressive search over the vocabulary.
package caption
