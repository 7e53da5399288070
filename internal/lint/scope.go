package lint

// frame is the traversal record of one function scope.
type frame struct {
	isAsync bool
	// script marks the bottom frame that stands for top-level code.
	script bool
	// tryDepth counts enclosing try constructs, inside this function,
	// where dropping an await would change which handler sees a rejection.
	tryDepth int
}

// scopeStack is pushed on function entry and popped on exit. The bottom
// frame is a script sentinel and is never popped.
type scopeStack struct {
	frames []frame
}

func newScopeStack() scopeStack {
	return scopeStack{frames: []frame{{script: true}}}
}

func (s *scopeStack) top() *frame {
	return &s.frames[len(s.frames)-1]
}

func (s *scopeStack) depth() int {
	return len(s.frames) - 1
}

// inFunction reports whether at least one function frame is open.
func (s *scopeStack) inFunction() bool {
	return !s.top().script
}

// enterFn pushes a frame; the returned func restores the previous state
// and must be deferred by the caller.
func (s *scopeStack) enterFn(isAsync bool) (restore func()) {
	n := len(s.frames)
	s.frames = append(s.frames, frame{isAsync: isAsync})
	return func() {
		s.frames = s.frames[:n]
	}
}

// enterTry bumps the try counter of the current frame.
func (s *scopeStack) enterTry() (restore func()) {
	idx := len(s.frames) - 1
	s.frames[idx].tryDepth++
	return func() {
		s.frames[idx].tryDepth--
	}
}
