// Package event defines the event types and the bus that decouple Mindguard's
// components. The detection watcher, the intervention scheduler, and the
// orchestrator never hold references to each other; they communicate
// exclusively through events published here.
package event
