// Package backup provides the scratch directory a batch keeps its skill
// backups in.
//
// Each batch call creates exactly one [Root] with a unique name, so
// concurrent batches never share backup storage:
//
//	os.TempDir()/
//	└── agentsync-batch-20260123T100712-1b4e28ba/
//	    ├── canonical/{skill}/
//	    └── providers/{provider}/{skill}
//
// The root is removed when the batch ends, whether it committed or rolled
// back. [Root.Cleanup] is idempotent.
package backup
