// Package identity persists the participant mapping that links a calendar
// counterpart (Participant B) to the Drive folder provisioned for them and to
// the organizer (Participant A) who owns that folder.
//
// The mapping is kept in a Backend, a small durable string key-value store.
// Three backends are provided:
//   - MemoryBackend: process-local, used by tests and dry runs
//   - FileBackend: a JSON document on local disk (default for the CLI)
//   - ValkeyBackend: a Valkey/Redis server, for deployed instances
//
// Each participant is stored under two keys, "folder_<email>" and
// "participantA_<email>", which keeps the layout compatible with the script
// properties the workflow historically used. Store hides that encoding behind
// Lookup, Save and Forget, which read and write both keys together.
package identity
