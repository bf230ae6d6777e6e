package bot

import (
	"html"
	"strings"
)

func (r *Router) helpText() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := []string{"📚 <b>Commands</b>", ""}
	var locked []string
	for _, name := range r.order {
		c := r.cmds[name]
		usage := c.Usage
		if usage == "" {
			usage = "/" + name
		}
		line := "<code>" + html.EscapeString(usage) + "</code>"
		if c.Description != "" {
			line += " : " + html.EscapeString(c.Description)
		}
		if c.Access == AccessOwnerOnly {
			locked = append(locked, "• 🔒 "+line)
			continue
		}
		lines = append(lines, "• "+line)
	}
	lines = append(lines, locked...)
	return strings.Join(lines, "\n")
}
