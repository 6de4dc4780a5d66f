// Package planner expands scan targets into concrete transfer items.
//
// For every subfolder discovered directly under a scan target the
// planner emits two item sources: the configured filenames, planned
// whether or not the object exists remotely, and the configured child
// subfolders, whose keys are listed recursively with folder markers
// dropped. The planner also owns the remote-key to local-path mapping.
//
// Plans are not de-duplicated. Overlapping configuration can plan the
// same key twice; the fetch phase tolerates repeats through its
// existence check.
package planner
