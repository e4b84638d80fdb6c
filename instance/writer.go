package instance

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"q.log/exactsimplex/model"
	"q.log/exactsimplex/rational"
)

// Write emits lp in the text format read by Parse.
func Write(w io.Writer, lp *model.LinearProgram) error {
	if err := lp.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(strconv.Itoa(lp.NumCols) + "\n")
	bw.WriteString(strconv.Itoa(lp.NumRows) + "\n")
	writeVector(bw, lp.C)
	writeVector(bw, lp.B)
	for _, row := range lp.A {
		writeVector(bw, row)
	}
	return errors.Wrap(bw.Flush(), "writing linear program")
}

func writeVector(bw *bufio.Writer, v []rational.Rational) {
	for i, x := range v {
		if i > 0 {
			bw.WriteByte(' ')
		}
		bw.WriteString(x.String())
	}
	bw.WriteByte('\n')
}
