// Package skill installs and removes skill packages.
//
// A skill is a directory containing a SKILL.md with YAML frontmatter. Each
// installed skill has one canonical copy; every provider that supports
// skills gets a link to that copy in its own skills directory:
//
//	<data>/skills/review/              canonical (global)
//	<project>/.agents/skills/review/   canonical (project)
//	~/.claude/skills/review -> <data>/skills/review
//
// Where links cannot be created the canonical copy is copied instead.
package skill
