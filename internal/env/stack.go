package env

import "github.com/gnolang/mtrans/internal/diag"

// Stack tracks the frames of nested translations. The root frame is never
// popped.
type Stack struct {
	frames []*Env
}

func NewStack(root *Env) *Stack {
	return &Stack{frames: []*Env{root}}
}

// Push derives a frame from the top and makes it current.
func (s *Stack) Push() *Env {
	e := s.Top().Derive()
	s.frames = append(s.frames, e)
	return e
}

// Enter makes e current. e is expected to derive from the top frame.
func (s *Stack) Enter(e *Env) {
	s.frames = append(s.frames, e)
}

// Pop discards the current frame. Popping the root is an internal error.
func (s *Stack) Pop() {
	if len(s.frames) <= 1 {
		diag.Fail(diag.KindInternal, diag.CodeStackUnderflow, -1)
	}
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *Stack) Top() *Env {
	return s.frames[len(s.frames)-1]
}

func (s *Stack) Depth() int {
	return len(s.frames)
}
