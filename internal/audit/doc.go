// Package audit verifies that mirrored files look like what their
// names claim.
//
// Each file whose extension maps to a known content type has its
// header sniffed; a disagreement between the sniffed type and the
// extension is reported as a mismatch. Stored error pages and
// truncated downloads typically surface this way, for example an HTML
// body saved under an image filename.
package audit
