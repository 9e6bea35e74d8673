// Package frontmatter parses YAML frontmatter from Markdown files such as
// a skill's SKILL.md.
//
// Frontmatter is delimited by lines containing only "---" at the start and
// end. The content between the delimiters is YAML; what follows the
// closing delimiter is the body.
//
//	type Meta struct {
//		Name        string `yaml:"name"`
//		Description string `yaml:"description"`
//	}
//
//	meta, body, err := frontmatter.ParseFile[Meta]("SKILL.md")
//	if errors.Is(err, frontmatter.ErrNoFrontmatter) {
//		// the file has no header
//	}
//
// Both LF and CRLF line endings are accepted.
package frontmatter
