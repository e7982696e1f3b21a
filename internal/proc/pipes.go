package proc

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// Pipes is the set of pipes connecting the stages of one pipeline. Pipe i
// carries the output of stage i into stage i+1.
type Pipes struct {
	readers []*os.File
	writers []*os.File

	closeOnce sync.Once
	closeErr  error
}

// OpenPipes allocates n pipes. On failure every pipe created so far is closed
// and the error wraps ErrLaunch.
func OpenPipes(n int) (*Pipes, error) {
	p := &Pipes{
		readers: make([]*os.File, 0, n),
		writers: make([]*os.File, 0, n),
	}
	for i := 0; i < n; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("%w: creating pipe %d of %d: %w", ErrLaunch, i+1, n, err)
		}
		p.readers = append(p.readers, r)
		p.writers = append(p.writers, w)
	}
	return p, nil
}

// Len returns the number of pipes in the set.
func (p *Pipes) Len() int {
	return len(p.readers)
}

// Reader returns the read end of pipe i.
func (p *Pipes) Reader(i int) *os.File {
	return p.readers[i]
}

// Writer returns the write end of pipe i.
func (p *Pipes) Writer(i int) *os.File {
	return p.writers[i]
}

// Close closes every endpoint held by the orchestrator. Only the first call
// does any work; later calls return the same result.
func (p *Pipes) Close() error {
	p.closeOnce.Do(func() {
		var errs []error
		for i := range p.readers {
			if err := p.readers[i].Close(); err != nil {
				errs = append(errs, err)
			}
			if err := p.writers[i].Close(); err != nil {
				errs = append(errs, err)
			}
		}
		p.closeErr = errors.Join(errs...)
	})
	return p.closeErr
}
