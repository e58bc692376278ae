package filter

import (
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Candidate is a port about to be applied
type Candidate struct {
	Port     int
	Previous int
	File     string
	ModTime  time.Time
}

// Guard is a compiled accept expression
type Guard struct {
	expression string
	program    *vm.Program
	now        func() time.Time
}

// env is the variable set a guard expression runs against
type env struct {
	Port     int           `expr:"port"`
	Previous int           `expr:"previous"`
	File     string        `expr:"file"`
	Age      time.Duration `expr:"age"`

	Between func(v, lo, hi int) bool  `expr:"between"`
	Seconds func(n int) time.Duration `expr:"seconds"`
	Minutes func(n int) time.Duration `expr:"minutes"`
}

func between(v, lo, hi int) bool {
	return v >= lo && v <= hi
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// CompileGuard compiles expression into a Guard. An empty expression yields a
// nil Guard, which accepts every port.
func CompileGuard(expression string) (*Guard, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, nil
	}

	program, err := expr.Compile(expression,
		expr.Env(env{}),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	return &Guard{
		expression: expression,
		program:    program,
		now:        time.Now,
	}, nil
}

// Allow reports whether c passes the guard. A nil Guard allows everything.
func (g *Guard) Allow(c Candidate) (bool, error) {
	if g == nil {
		return true, nil
	}

	var age time.Duration
	if !c.ModTime.IsZero() {
		age = g.now().Sub(c.ModTime)
	}

	result, err := expr.Run(g.program, env{
		Port:     c.Port,
		Previous: c.Previous,
		File:     c.File,
		Age:      age,
		Between:  between,
		Seconds:  seconds,
		Minutes:  minutes,
	})
	if err != nil {
		return false, &EvaluationError{
			Expression: g.expression,
			Port:       c.Port,
			Reason:     "failed to evaluate expression",
			Err:        err,
		}
	}

	allowed, ok := result.(bool)
	if !ok {
		return false, &EvaluationError{
			Expression: g.expression,
			Port:       c.Port,
			Reason:     "expression did not return a boolean",
		}
	}

	return allowed, nil
}

// String returns the source expression
func (g *Guard) String() string {
	if g == nil {
		return ""
	}
	return g.expression
}
