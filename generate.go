package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"q.log/exactsimplex/instance"
	"q.log/exactsimplex/model"
)

type generateOptions struct {
	nbVar     int
	nbConst   int
	twoPhase  bool
	hollow    bool
	seed      int64
	kleeMinty int
}

func (o generateOptions) rng(fs *pflag.FlagSet) *rand.Rand {
	if fs.Changed("seed") {
		return rand.New(rand.NewSource(o.seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func (o generateOptions) generate(rng *rand.Rand) (*model.LinearProgram, error) {
	return instance.Generate(rng, instance.GenerateOptions{
		NbVar:    o.nbVar,
		NbConst:  o.nbConst,
		TwoPhase: o.twoPhase,
		Hollow:   o.hollow,
	})
}

func (o *generateOptions) bindFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&o.nbVar, "variables", "n", 5, "number of variables")
	fs.IntVarP(&o.nbConst, "constraints", "m", 5, "number of constraints")
	fs.BoolVar(&o.twoPhase, "twophase", false, "draw negative entries too, so the origin is usually infeasible")
	fs.BoolVar(&o.hollow, "hollow", false, "zero half of the objective and matrix entries")
	fs.Int64Var(&o.seed, "seed", 0, "random seed, time based when unset")
	fs.IntVar(&o.kleeMinty, "klee-minty", 0, "use the Klee-Minty cube of this dimension instead of random entries")
}

func newGenerateCmd() *cobra.Command {
	var o generateOptions
	cmd := &cobra.Command{
		Use:   "generate FILE",
		Short: "Write a random linear program in the text format",
		Long: `generate writes a random linear program with integer entries to FILE.

        $ exactsimplex generate lp.txt -n 10 -m 8 --twophase
        $ exactsimplex generate cube.txt --klee-minty 6
        `,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				lp  *model.LinearProgram
				err error
			)
			if o.kleeMinty > 0 {
				lp, err = instance.KleeMinty(o.kleeMinty)
			} else {
				lp, err = o.generate(o.rng(cmd.Flags()))
			}
			if err != nil {
				return err
			}
			return writeProgram(args[0], lp)
		},
	}
	o.bindFlags(cmd.Flags())
	return cmd
}

func writeProgram(filename string, lp *model.LinearProgram) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "creating instance file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "closing %s", filename)
		}
	}()
	return instance.Write(f, lp)
}
