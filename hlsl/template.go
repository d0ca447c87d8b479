// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"io/fs"
)

// segmentCount is how many @N slots a template may reference.
const segmentCount = 10

// spliceTemplate reads a template from the file system and substitutes
// its @N tokens from the segment table. The result is null-terminated.
func spliceTemplate(fsys fs.FS, name string, segments *[segmentCount]string) ([]byte, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errorf(ErrTemplateFailure, "cannot read template %s: %v", name, err)
	}
	return splice(data, segments)
}

// splice streams the template bytes into a fresh buffer, replacing each
// @N token with the corresponding segment. A '@' not followed by a digit
// is a malformed template and fails the compile.
func splice(data []byte, segments *[segmentCount]string) ([]byte, error) {
	out := make([]byte, 0, len(data)+len(data)/2)
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b != '@' {
			out = append(out, b)
			continue
		}
		i++
		if i >= len(data) || !isDigit(data[i]) {
			return nil, errorf(ErrTemplateFailure, "malformed template token at byte %d", i-1)
		}
		out = append(out, segments[data[i]-'0']...)
	}
	out = append(out, 0)
	return out, nil
}

// splitSegments cuts a feature template into per-segment texts: the bytes
// after a @N marker accrue to segment N until the next marker. Text ahead
// of the first marker is dropped.
func splitSegments(data []byte) ([segmentCount]string, error) {
	var segs [segmentCount]string
	cur := -1
	start := 0
	flush := func(end int) {
		if cur >= 0 {
			segs[cur] += string(data[start:end])
		}
	}
	for i := 0; i < len(data); i++ {
		if data[i] != '@' {
			continue
		}
		if i+1 >= len(data) || !isDigit(data[i+1]) {
			return segs, errorf(ErrTemplateFailure, "malformed template token at byte %d", i)
		}
		flush(i)
		cur = int(data[i+1] - '0')
		start = i + 2
		i++
	}
	flush(len(data))
	return segs, nil
}
