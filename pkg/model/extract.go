package model

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractText pulls the generated text out of a Responses API envelope.
//
// The envelope comes in two shapes. The convenience field "output_text" is
// tried first; otherwise output[].content[].text fragments are scanned in
// order and the first non-blank one wins. An envelope with neither yields "".
func ExtractText(envelope []byte) string {
	if text := gjson.GetBytes(envelope, "output_text"); isNonBlankString(text) {
		return text.Str
	}

	var found string
	gjson.GetBytes(envelope, "output").ForEach(func(_, item gjson.Result) bool {
		item.Get("content").ForEach(func(_, part gjson.Result) bool {
			if text := part.Get("text"); isNonBlankString(text) {
				found = text.Str
				return false
			}
			return true
		})
		return found == ""
	})
	return found
}

func isNonBlankString(r gjson.Result) bool {
	return r.Type == gjson.String && strings.TrimSpace(r.Str) != ""
}

// ExtractJSON recovers a JSON object from text that should have been pure
// JSON but may be wrapped in commentary or code fences.
//
// Only brace bounding is performed: the result spans the first '{' to the
// last '}' and is not checked for syntax. ErrNoJSONObject is returned when
// no such pair exists.
func ExtractJSON(text string) (string, error) {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}") {
		return t, nil
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start == -1 || end == -1 || end <= start {
		return "", ErrNoJSONObject
	}
	return t[start : end+1], nil
}
