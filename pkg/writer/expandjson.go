package writer

import (
	"encoding/json"
	"regexp"

	"github.com/TylerBrock/colorjson"
)

// embeddedJSONPattern finds a single level of brace-balanced {...} blocks,
// good enough for the flat param dumps this tool deals with.
var embeddedJSONPattern = regexp.MustCompile(`\{[^{}]*\}`)

// expandEmbeddedJSON appends a colorized, indented rendering of every
// embedded JSON object found in text immediately below its raw
// occurrence, leaving the raw text itself untouched. Blocks that fail to
// parse as JSON are left alone, with nothing appended.
func expandEmbeddedJSON(text string) string {
	return embeddedJSONPattern.ReplaceAllStringFunc(text, func(block string) string {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(block), &obj); err != nil {
			return block
		}

		f := colorjson.NewFormatter()
		f.Indent = 2
		pretty, err := f.Marshal(obj)
		if err != nil {
			return block
		}
		return block + "\n" + string(pretty)
	})
}
