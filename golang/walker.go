package golang

import (
	"fmt"
	"log/slog"
	"path"

	"github.com/cockroachdb/errors"

	"github.com/broady/opgen/ir"
)

// Walker visits an operation class tree and emits every concrete operation
// once. A Walker is single-use: its dedup registry lives for one Walk.
type Walker struct {
	emitter  *Emitter
	registry *Registry
	logger   *slog.Logger
	result   Result
}

// NewWalker creates a Walker over the given emitter with a fresh registry.
func NewWalker(e *Emitter) *Walker {
	return &Walker{
		emitter:  e,
		registry: NewRegistry(),
		logger:   e.cfg.Logger,
	}
}

// Registry returns the walker's dedup registry.
func (w *Walker) Registry() *Registry {
	return w.registry
}

// Walk visits root and all its descendants depth-first and returns the
// generated functions and skipped operations, in visit order.
func (w *Walker) Walk(root *ir.ClassNode) Result {
	if root != nil {
		w.visit(root)
	}
	return w.result
}

func (w *Walker) visit(n *ir.ClassNode) {
	if !n.Abstract {
		w.generate(n.OperationDescriptor)
	}
	for _, child := range n.Children {
		if child != nil {
			w.visit(child)
		}
	}
}

func (w *Walker) generate(op ir.OperationDescriptor) {
	log := w.logger.With(slog.String("nickname", op.Nickname), slog.String("class", op.Class))

	if !w.selected(op.Nickname) {
		log.Debug("operation filtered out")
		return
	}
	if w.registry.Has(op.Nickname) {
		log.Debug("synonym already generated")
		return
	}

	fn, err := w.build(op)
	if err != nil {
		reason := err.Error()
		var ue *UnsupportedError
		if errors.As(err, &ue) {
			reason = ue.Err.Error()
		}
		w.result.Skipped = append(w.result.Skipped, Skip{
			Nickname: op.Nickname,
			Reason:   reason,
			Text:     fmt.Sprintf("// Unsupported: %s: %s", op.Nickname, reason),
		})
		log.Debug("operation unsupported", slog.String("reason", reason))
		return
	}

	w.result.Functions = append(w.result.Functions, fn)
	w.registry.Add(op.Nickname)
	log.Debug("operation generated", slog.String("func", fn.Name))
}

// build calls the emitter, converting a panic into an error so one malformed
// operation never aborts the run.
func (w *Walker) build(op ir.OperationDescriptor) (fn Function, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &UnsupportedError{Nickname: op.Nickname, Err: errors.Newf("internal error: %v", r)}
		}
	}()
	return w.emitter.Build(op)
}

// selected applies the include and exclude patterns.
func (w *Walker) selected(nickname string) bool {
	cfg := w.emitter.cfg
	if len(cfg.Include) > 0 && !matchAny(cfg.Include, nickname) {
		return false
	}
	return !matchAny(cfg.Exclude, nickname)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}
