// Package fetcher performs the idempotent download of planned transfer
// items.
//
// An existing local path short-circuits to a skipped outcome without
// contacting the remote store; this presence check is the sole resume
// mechanism. Object bodies are streamed to disk through a pooled copy
// buffer, written to a temporary path and renamed into place on
// success so an interrupted download is never mistaken for a completed
// object on a later run.
//
// The fetcher never deletes or overwrites existing local data, and it
// never returns an error to the caller: every failure is absorbed into
// a failed item result so the run can continue.
package fetcher
