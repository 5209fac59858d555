// Package vocab provides the caption vocabulary: a bidirectional mapping
// between words and the integer identifiers the caption model was trained
// with, including the reserved start and end markers.
package vocab
