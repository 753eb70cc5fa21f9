package lex

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf8"
)

// regexReader is a reader that buffers as it goes so reads can be "undone" as
// needed. Running the regexp package against an io.Reader requires this
// unless the only question being asked is whether something matched at all.
//
// This reader implements io.ReadSeeker and a RuneReader-shaped ReadRune.
type regexReader struct {
	b     []byte
	r     *bufio.Reader
	cur   int
	marks map[string]int
	atEOF bool
}

func newRegexReader(r io.Reader) *regexReader {
	return &regexReader{
		b:     make([]byte, 0),
		r:     bufio.NewReader(r),
		marks: make(map[string]int),
	}
}

func (rr *regexReader) avail() int {
	return len(rr.b) - rr.cur
}

// readBuf reads from the buffer and advances the cursor by the number of
// bytes read. If n bytes are not available, it returns everything available.
func (rr *regexReader) readBuf(n int) []byte {
	limit := rr.avail()
	if n < limit {
		limit = n
	}

	read := rr.b[rr.cur : rr.cur+limit]
	rr.cur += limit
	return read
}

// readIntoBuf calls Read on the underlying reader to attempt to read n bytes
// into the buffer. It buffers all bytes read and returns the error. It does
// not move the cursor.
func (rr *regexReader) readIntoBuf(n int) (actualRead int, err error) {
	read := make([]byte, n)

	actualRead, err = rr.r.Read(read)
	// if at least one byte was read for any reason, even alongside an error,
	// it must be buffered
	if actualRead > 0 {
		rr.b = append(rr.b, read[:actualRead]...)
	}

	return actualRead, err
}

// SearchAndAdvance applies the given regular expression and, on a match,
// moves the internal cursor forward to exactly one byte past the end of the
// match. If no term is found, the cursor is not advanced at all and a nil
// slice is returned; otherwise the return value is a slice of matches where
// the index of each match is the contents of that sub-expression group, and
// group 0 is the entire match.
//
// Uses (and overwrites) the mark named "SEARCH_AND_ADVANCE".
func (rr *regexReader) SearchAndAdvance(re regexpMatcher) ([]string, error) {
	rr.Mark("SEARCH_AND_ADVANCE")
	matchIndexes := re.FindReaderSubmatchIndex(rr)
	matches := rr.GetMatches("SEARCH_AND_ADVANCE", matchIndexes)
	rr.Restore("SEARCH_AND_ADVANCE")
	if len(matches) > 0 {
		rr.Seek(int64(matchIndexes[1]), io.SeekCurrent)
	} else {
		// go to end of buffer and try to read one more byte, to distinguish
		// "no match" from "underlying reader failed"
		_, err := rr.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, fmt.Errorf("seeking to end of buffer: %w", err)
		}

		_, err = rr.Read(make([]byte, 1))

		if err == io.EOF {
			rr.atEOF = true
		}

		if err != nil {
			return nil, err
		}

		// no error; plain no-match. go back to the mark.
		rr.Restore("SEARCH_AND_ADVANCE")
	}
	return matches, nil
}

// regexpMatcher is the subset of *regexp.Regexp that SearchAndAdvance needs;
// declared as an interface only so this file stays free of the regexp import
// (compiler.go owns compilation).
type regexpMatcher interface {
	FindReaderSubmatchIndex(r io.RuneReader) []int
}

// GetMatches reads the strings located in the buffered contents from the
// inclusive byte index "from" to the exclusive byte index "to" implied by
// pairs, relative to the mark named by mark. This is designed to retrieve the
// results of a match detected by regexp.FindReaderSubmatchIndex.
//
// Returns a slice where every entry is a string, positioned at the index of
// the capturing group it belongs to (0 is the entire match); an unmatched
// sub-expression is the empty string, and a nil slice means no match at all.
func (rr *regexReader) GetMatches(mark string, pairs []int) []string {
	markOffset, ok := rr.marks[mark]
	if !ok {
		panic(fmt.Sprintf("invalid mark name: %q", mark))
	}

	if len(pairs) == 0 {
		return nil
	}

	matches := make([]string, len(pairs)/2)
	matches[0] = string(rr.b[markOffset+pairs[0] : markOffset+pairs[1]])

	for i := 2; i < len(pairs); i += 2 {
		left := pairs[i]
		right := pairs[i+1]
		if left != -1 && right != -1 {
			matches[i/2] = string(rr.b[markOffset+left : markOffset+right])
		}
	}

	return matches
}

func (rr *regexReader) ReadRune() (r rune, size int, err error) {
	charBytes := make([]byte, 1)
	n, err := rr.Read(charBytes)
	if n != 1 {
		return r, size, err
	}

	var setErr error
	if err != nil {
		setErr = err
	}

	firstByte := charBytes[0]
	var remBytes int

	if firstByte>>7 == 0 {
		remBytes = 0
	} else if firstByte>>5 == 0b110 {
		remBytes = 1
	} else if firstByte>>4 == 0b1110 {
		remBytes = 2
	} else if firstByte>>3 == 0b11110 {
		remBytes = 3
	}

	if remBytes > 0 {
		if setErr != nil && setErr != io.EOF {
			return r, n, setErr
		}
		additionalCharBytes := make([]byte, remBytes)
		n, err := rr.Read(additionalCharBytes)
		if n != remBytes {
			if err == io.EOF {
				return r, n, fmt.Errorf("couldn't read all bytes of utf-8 character")
			}
			return r, n, err
		}
		setErr = err
		charBytes = append(charBytes, additionalCharBytes...)
	}

	r, size = utf8.DecodeRune(charBytes)

	missedBy := len(charBytes) - size
	if missedBy > 0 {
		rr.cur -= missedBy
	}

	return r, size, setErr
}

// Mark creates a new marker with the given name, for later use with Restore,
// at the current offset.
func (rr *regexReader) Mark(name string) {
	rr.marks[name] = rr.cur
}

// Restore seeks back to the marker with the given name. Panics if absent.
func (rr *regexReader) Restore(name string) {
	offset, ok := rr.marks[name]
	if !ok {
		panic(fmt.Sprintf("invalid mark name: %q", name))
	}

	rr.cur = offset
}

// Offset returns the current absolute byte offset into the buffered bytes.
func (rr *regexReader) Offset() int64 {
	return int64(rr.cur)
}

func (rr *regexReader) Read(p []byte) (n int, err error) {
	read := rr.readBuf(len(p))
	stillNeed := len(p) - len(read)

	if stillNeed > 0 {
		var actualRead int
		actualRead, err = rr.readIntoBuf(stillNeed)
		if actualRead > 0 {
			readAdd := rr.readBuf(actualRead)
			read = append(read, readAdd...)
		}
	}

	n = len(read)
	copy(p, read)
	return n, err
}

// Seek moves the internal cursor to the provided offset. Because regexReader
// reads from an underlying Reader whose end is unknown in advance, SeekEnd is
// interpreted as relative to the end of the *buffered* bytes, not those still
// unread in the underlying reader.
func (rr *regexReader) Seek(offset int64, whence int) (int64, error) {
	var newOffset int64
	if whence == io.SeekStart {
		newOffset = offset
	} else if whence == io.SeekCurrent {
		newOffset = int64(rr.cur) + offset
	} else if whence == io.SeekEnd {
		newOffset = int64(len(rr.b)) + offset
	} else {
		return 0, fmt.Errorf("unknown whence argument: %v", whence)
	}

	if newOffset < 0 {
		return 0, fmt.Errorf("resulting absolute offset specifies index before start of file: %d", newOffset)
	}
	if newOffset > int64(len(rr.b)) {
		newOffset = int64(len(rr.b))
	}

	rr.cur = int(newOffset)
	return newOffset, nil
}
