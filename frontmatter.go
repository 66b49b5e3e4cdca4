package inkwell

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// splitFrontMatter separates a `---` delimited YAML front matter block from
// the Markdown body. If the file does not start with a delimiter, had is
// false and body is the full input. A file that opens a block without
// closing it is an error, not a degenerate body.
func splitFrontMatter(content []byte) (fm, body []byte, had bool, err error) {
	nl := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = "\r\n"
	}

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}
	rest := content[len(open):]

	// Empty block: the closing delimiter immediately follows the opener.
	if bytes.HasPrefix(rest, open) {
		return nil, rest[len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		// Allow a closing delimiter at EOF without a trailing newline.
		tail := []byte(nl + "---")
		if bytes.HasSuffix(rest, tail) {
			return rest[:len(rest)-len(tail)+len(nl)], nil, true, nil
		}
		return nil, nil, false, ErrUnclosedFrontMatter
	}

	fm = rest[:idx+len(nl)]
	body = rest[idx+len(closeSeq):]
	return fm, body, true, nil
}

// parseFrontMatter decodes a raw YAML front matter block (without the `---`
// delimiters) into a FrontMatter record.
func parseFrontMatter(raw []byte) (FrontMatter, error) {
	var front FrontMatter
	if len(raw) == 0 {
		return front, nil
	}
	if err := yaml.Unmarshal(raw, &front); err != nil {
		return FrontMatter{}, err
	}
	return front, nil
}
