// Package cli provides command-line interface setup and configuration
// for the captionvoice application. It handles flag parsing, command
// creation, settings validation and logger setup using cobra, viper,
// validator and zerolog.
package cli
