package willowkit

// resourceScope collects release functions for temporary resources and runs
// them in reverse acquisition order. Each release runs at most once, even if
// close is called again or a release panics.
type resourceScope struct {
	releases []scopedRelease
}

type scopedRelease struct {
	name string
	fn   func()
}

// add registers fn to run when the scope closes. name is used for debug
// logging only.
func (s *resourceScope) add(name string, fn func()) {
	s.releases = append(s.releases, scopedRelease{name: name, fn: fn})
}

// Len returns the number of releases still pending.
func (s *resourceScope) Len() int {
	return len(s.releases)
}

// close runs every pending release, most recent first. A panicking release
// does not stop the remaining ones; the first panic is re-raised afterwards.
func (s *resourceScope) close() {
	var firstPanic any
	for len(s.releases) > 0 {
		last := len(s.releases) - 1
		r := s.releases[last]
		s.releases = s.releases[:last]
		func() {
			defer func() {
				if p := recover(); p != nil && firstPanic == nil {
					firstPanic = p
				}
			}()
			if globalDebug {
				debugLogf("release %s", r.name)
			}
			r.fn()
		}()
	}
	if firstPanic != nil {
		panic(firstPanic)
	}
}
