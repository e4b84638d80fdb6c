package instance

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"q.log/exactsimplex/model"
	"q.log/exactsimplex/rational"
)

// ParseError reports a malformed linear program file.
type ParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	s := fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ParseError) Unwrap() error { return e.Err }

// Reader reads a linear program file, either in the plain text format or,
// for files ending in .mps, in fixed MPS format.
type Reader struct {
	filename string
}

func NewReader(filename string) *Reader {
	return &Reader{
		filename: filename,
	}
}

// ConstructModelFromFile returns the program stored in the reader's file in
// canonical form.
func (r *Reader) ConstructModelFromFile() (*model.LinearProgram, error) {
	if strings.EqualFold(filepath.Ext(r.filename), ".mps") {
		return ReadMPS(r.filename)
	}

	f, err := os.Open(r.filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening linear program")
	}
	defer f.Close()

	lp, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", r.filename)
	}
	return lp, nil
}

// Parse reads the text format:
//
//	n
//	m
//	c_1 ... c_n
//	b_1 ... b_m
//	a_11 ... a_1n
//	...
//	a_m1 ... a_mn
//
// Blank lines are ignored.
func Parse(in io.Reader) (*model.LinearProgram, error) {
	type line struct {
		no     int
		fields []string
	}
	var lines []line
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for no := 1; sc.Scan(); no++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, line{no: no, fields: fields})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading linear program")
	}

	next := func(what string) (line, error) {
		if len(lines) == 0 {
			return line{}, &ParseError{Line: 0, Msg: "unexpected end of input, missing " + what}
		}
		l := lines[0]
		lines = lines[1:]
		return l, nil
	}

	dim := func(what string) (int, error) {
		l, err := next(what)
		if err != nil {
			return 0, err
		}
		if len(l.fields) != 1 {
			return 0, &ParseError{Line: l.no, Msg: fmt.Sprintf("expected a single %s, got %d tokens", what, len(l.fields))}
		}
		v, err := strconv.Atoi(l.fields[0])
		if err != nil {
			return 0, &ParseError{Line: l.no, Msg: "invalid " + what, Err: err}
		}
		if v <= 0 {
			return 0, &ParseError{Line: l.no, Msg: fmt.Sprintf("%s must be positive, got %d", what, v)}
		}
		return v, nil
	}

	vector := func(what string, size int) ([]rational.Rational, error) {
		l, err := next(what)
		if err != nil {
			return nil, err
		}
		if len(l.fields) != size {
			return nil, &ParseError{Line: l.no, Msg: fmt.Sprintf("expected %d tokens for %s, got %d", size, what, len(l.fields))}
		}
		out := make([]rational.Rational, size)
		for i, tok := range l.fields {
			if out[i], err = rational.Parse(tok); err != nil {
				return nil, &ParseError{Line: l.no, Msg: fmt.Sprintf("token %d of %s", i+1, what), Err: err}
			}
		}
		return out, nil
	}

	n, err := dim("variable count")
	if err != nil {
		return nil, err
	}
	m, err := dim("constraint count")
	if err != nil {
		return nil, err
	}

	lp := model.New(m, n)
	if lp.C, err = vector("objective", n); err != nil {
		return nil, err
	}
	if lp.B, err = vector("right-hand side", m); err != nil {
		return nil, err
	}
	for r := 0; r < m; r++ {
		if lp.A[r], err = vector(fmt.Sprintf("constraint row %d", r+1), n); err != nil {
			return nil, err
		}
	}
	if len(lines) > 0 {
		return nil, &ParseError{Line: lines[0].no, Msg: fmt.Sprintf("unexpected content after %d constraint rows", m)}
	}

	return lp, nil
}

// ParseString is Parse on an in-memory document.
func ParseString(s string) (*model.LinearProgram, error) {
	return Parse(strings.NewReader(s))
}
