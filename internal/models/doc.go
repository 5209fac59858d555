// Package models lists the OpenAI models available to the configured API
// key, grouped into the ones usable for speech and for caption
// translation.
package models
