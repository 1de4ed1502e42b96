// Package events defines the typed event contract for the interview session
// actor inbox.
//
// Every inbound occurrence that can affect session state (transcript updates,
// policy-engine responses, control commands, timer fires, ingestion failures)
// is expressed as one of these types and serialized through a single per
// session inbox, so the state machine only ever observes one event at a time.
//
// Event kinds are grouped by source-facing namespaces:
//
//   - user_input.*  transcript activity from the speech-to-text collaborator
//   - control.*     client and registry control commands
//   - policy.*      correlated responses from the policy bridge
//   - ingest.*      audio ingestion / transcription stream health
//   - timer.*       endpointing timers re-entering the inbox
//   - session.*     session lifecycle (context priming)
//
// Events that answer an asynchronous request (policy.* and timer.*) carry the
// turn epoch they were issued for; the actor discards any event whose epoch no
// longer matches the live turn.
package events
