package synthesis

import (
	"regexp"
	"strings"
)

// fencedJSON matches the first fenced block tagged json. The tag line break is
// not part of the interior.
var fencedJSON = regexp.MustCompile("(?is)```json[ \\t]*\\r?\\n?(.*?)```")

// Extract locates the candidate query text in a raw model reply: the interior
// of the first ```json fenced block, or the whole trimmed reply when there is
// none. It never fails; judging the candidate is left to later stages.
func Extract(reply string) string {
	if m := fencedJSON.FindStringSubmatch(reply); m != nil {
		return m[1]
	}
	return strings.TrimSpace(reply)
}
