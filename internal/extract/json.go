package extract

import (
	"bytes"
	"encoding/json"
	"errors"
)

// JSONExtractor indexes JSON modules, which never import anything. It still
// validates the document so a corrupt file fails the build.
type JSONExtractor struct{}

func (JSONExtractor) Language() string {
	return "json"
}

func (JSONExtractor) Extensions() []string {
	return []string{".json"}
}

func (JSONExtractor) Extract(content []byte) ([]string, error) {
	if json.Valid(content) {
		return nil, nil
	}

	var v any
	err := json.Unmarshal(content, &v)
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := lineColumn(content, syntaxErr.Offset)
		return nil, &ParseError{Reason: syntaxErr.Error(), Line: line, Column: col}
	}
	return nil, &ParseError{Reason: "invalid JSON"}
}

func lineColumn(content []byte, offset int64) (int, int) {
	if offset > int64(len(content)) {
		offset = int64(len(content))
	}
	before := content[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	col := int(offset) - bytes.LastIndexByte(before, '\n')
	return line, col
}
