package fetch

import (
	"context"
	"fmt"
	"sync"
)

// Stub serves canned results without touching the network.
type Stub struct {
	mu        sync.Mutex
	responses map[string]*Result
	errs      map[string]error
	calls     []string
}

var _ Fetcher = (*Stub)(nil)

func NewStub() *Stub {
	return &Stub{
		responses: make(map[string]*Result),
		errs:      make(map[string]error),
	}
}

// Respond registers the result returned for url. FinalURL defaults to
// the requested URL when left empty.
func (s *Stub) Respond(url string, result *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if result.FinalURL == "" {
		result.FinalURL = url
	}
	s.responses[url] = result
}

// Fail registers a transport error for url.
func (s *Stub) Fail(url string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[url] = err
}

func (s *Stub) Fetch(_ context.Context, url string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, url)

	if err, ok := s.errs[url]; ok {
		return nil, err
	}
	if result, ok := s.responses[url]; ok {
		return result, nil
	}
	return nil, fmt.Errorf("no stub response for %s", url)
}

// Calls returns the URLs fetched so far, in order.
func (s *Stub) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
