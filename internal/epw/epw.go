package epw

import (
	"bufio"
	"io"
	"os"
)

// File is a fully parsed EPW file: the 8-line header and the weather table.
type File struct {
	Header *Header
	Data   *WeatherData
}

// Parse reads an entire EPW document from r: the header first, then every
// remaining line as a data row. The parse is single-pass and all-or-nothing.
func Parse(r io.Reader) (*File, error) {
	sc := bufio.NewScanner(r)

	header, err := ParseHeader(sc)
	if err != nil {
		return nil, err
	}
	data, err := ParseData(sc, header)
	if err != nil {
		return nil, err
	}

	return &File{Header: header, Data: data}, nil
}

// Open parses the EPW file at path. The file handle is released whether the
// parse succeeds or fails.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Kind: KindFileAccess, Detail: err.Error(), Err: err}
	}
	defer f.Close()

	return Parse(f)
}
