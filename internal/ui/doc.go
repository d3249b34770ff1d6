// Package ui provides the styled terminal output used by ferro's
// non-interactive commands.
//
// # Components
//
//	Spinner         - animated status line on stderr while a request runs
//	RenderNodeTable - the fleet table printed by "ferro nodes"
//	RenderKeyValues - aligned label/value listings for "ferro node"
//	RenderSparkline - min/max scaled history line for CPU summaries
//	RenderHeader    - title and divider above command output
//
// # Color Scheme
//
// Colors are neon hex values rendered through Lip Gloss. Semantic aliases
// (ColorSuccess, ColorError, ColorWarning, ColorInfo, ColorMuted) are what
// callers should reach for. DisableColors switches the whole process to the
// ASCII profile for --no-color.
//
// Spinners write to stderr so stdout stays parseable when piped.
package ui
