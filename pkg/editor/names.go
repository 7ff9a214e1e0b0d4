package editor

import (
	"fmt"

	"github.com/signstudio/signstudio/pkg/block"
)

// nextName generates a unique block name for the given type: the type prefix
// followed by the smallest positive N not already in use (Text1, Text2, ...).
// Gaps left by deletions are reused.
func nextName(t block.Type, taken map[string]bool) string {
	prefix := t.NamePrefix()
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s%d", prefix, n)
		if !taken[name] {
			return name
		}
	}
}
