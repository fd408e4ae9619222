// Package tracefile opens the inputs and outputs named on the tracycat
// command line.
package tracefile

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// Stdio is the name that selects stdin or stdout in place of a file.
const Stdio = `-`

// Trace is an opened input stream.
type Trace struct {
	io.ReadCloser
	Path string
	Name string
	Size int64
}

// Open opens the named input, Stdio selects stdin. Size is -1 when it is
// unknown.
func Open(path string, stdin io.Reader) (*Trace, error) {
	if path == Stdio {
		return &Trace{io.NopCloser(stdin), path, `stdin`, -1}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Trace{f, path, filepath.Base(path), info.Size()}, nil
}

// Create creates the named output, Stdio selects stdout which is never
// closed.
func Create(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == Stdio || path == `` {
		return nopWriteCloser{stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// List is an ordered set of input paths.
type List []string

// Args returns the inputs named by args, defaulting to stdin when empty.
func Args(args []string) List {
	if len(args) == 0 {
		return List{Stdio}
	}
	return List(args)
}

// String implements fmt.Stringer.
func (s List) String() string {
	var buf bytes.Buffer
	if len(s) == 0 {
		return `List()`
	}

	buf.WriteString(`List(` + s[0])
	for _, p := range s[1:] {
		buf.WriteString(`, ` + p)
	}
	return buf.String() + `)`
}
