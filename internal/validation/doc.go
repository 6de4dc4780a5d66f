// Package validation provides centralized input validation logic.
// This includes bucket name validation, object key validation, and
// checks on remote prefixes, local roots, and scan targets.
//
// All user inputs are validated before any remote call to prevent
// path traversal into the local tree and ensure compliance with S3
// naming requirements.
package validation
