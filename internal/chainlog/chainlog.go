// Package chainlog is an explicit, optional event sink for cross-cutting
// diagnostics. Components receive a Logger by reference; passing nil (or Nop)
// turns every event into a no-op, so there is no ambient global state.
package chainlog

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// Logger receives structured diagnostic events.
type Logger interface {
	Event(component, event string, fields map[string]any)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Event(string, string, map[string]any) {}

// Std writes events through the standard logger.
type Std struct{}

func (Std) Event(component, event string, fields map[string]any) {
	if len(fields) == 0 {
		log.Printf("[%s] %s", component, event)
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	log.Printf("[%s] %s %s", component, event, strings.Join(parts, " "))
}

// OrNop returns the given logger, or Nop when it is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop{}
	}
	return l
}
