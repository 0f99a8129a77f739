// Package classifier decides whether an ingested request came from a
// bot. Classification is a pluggable strategy so detection logic can
// evolve without touching ingestion control flow.
package classifier

import "github.com/botwall-io/botwall/internal/models"

// Result is a classification verdict plus an optional bot-family label
// when the matching rule knows one.
type Result struct {
	Classification models.Classification
	BotFamily      string
}

// Classifier inspects request metadata and returns a verdict. It must
// be safe for concurrent use; ingestion calls it from many goroutines.
type Classifier interface {
	Classify(userAgent, path string) Result
}
