// Package config loads agentsync's own settings.
//
// The file is ~/.config/agentsync/config.yaml (or config.yaml in the
// current directory, or in $AGENTSYNC_CONFIG_DIR when set):
//
//	version: 1
//	default_providers: [claude, opencode]
//	minimum_priority: medium
//	conflict_policy: skip
//	backup_dir: ~/.cache/agentsync
//	data_dir: ~/.local/share/agentsync
//	providers:
//	  cursor:
//	    config_dir: ~/work/.cursor
//
// Every key can be overridden from the environment with the AGENTSYNC_
// prefix, e.g. AGENTSYNC_CONFLICT_POLICY=overwrite.
//
// A missing file is not an error when no explicit path was given; the
// values from [Default] apply. Loaded files are always validated.
package config
