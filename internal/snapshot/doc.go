// Package snapshot captures filesystem state before a batch mutates it and
// puts that state back when the batch rolls back.
//
// A [ConfigSnapshot] records the exact bytes and mode of a set of config
// files. A [SkillSnapshot] records the canonical copy of a skill and the
// shape of every provider's link path for it. Snapshots are plain values
// built by their capture functions; nothing is shared between calls.
//
// Restore is best effort: every step is attempted and every failure is
// returned, so a caller can tell a clean revert from a partial one.
package snapshot
