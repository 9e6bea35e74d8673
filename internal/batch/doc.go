// Package batch applies MCP and skill operations across providers as one
// unit. Every config file and skill path a batch can touch is captured
// before the first write; if any step fails, the batch undoes the skill
// installs it completed, restores every captured file and path, and reports
// what could not be reverted.
//
// A batch runs its steps one at a time. Two batches in the same process may
// run concurrently only when they target different files.
package batch
