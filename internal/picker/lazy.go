package picker

import "sync"

// Lazy builds a Service on first use and hands out the same one afterwards.
type Lazy struct {
	build func() (Options, error)

	once sync.Once
	svc  *Service
	err  error
}

// NewLazy defers both option gathering and service construction until Get.
func NewLazy(build func() (Options, error)) *Lazy {
	return &Lazy{build: build}
}

// Get returns the service, constructing it on the first call. A failed
// construction is not retried.
func (l *Lazy) Get() (*Service, error) {
	l.once.Do(func() {
		opts, err := l.build()
		if err != nil {
			l.err = err
			return
		}
		l.svc, l.err = NewService(opts)
	})
	return l.svc, l.err
}
