// Package advice defines the boundary to the external legal reasoning
// engine. The task subsystem treats the engine as opaque: it hands over a
// prepared Request and receives an Opinion or an error, without knowing
// how the answer was produced. The Gemini-backed implementation lives in
// internal/platform/gemini.
package advice
