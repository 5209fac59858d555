// Package translation translates captions into the selected language. A
// network backend (OpenAI, Gemini or LibreTranslate) does the work; the
// Adapter signals every failure as ErrTranslation so callers can fall back
// to the original text, and stops calling a failing backend for a while
// through a circuit breaker.
package translation
