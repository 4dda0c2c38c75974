package modsynth

// ScopeData holds the Channel Data of one live scope, one entry per audio
// channel of the hosting audio object. It has no lock of its own: it is only
// touched while the owning unit's lock is held.
type ScopeData struct {
	scope    Scope
	channels []*ChannelData
}

func newScopeData(scope Scope) *ScopeData {
	return &ScopeData{scope: scope, channels: make([]*ChannelData, 0)}
}

func (s *ScopeData) Scope() Scope { return s.scope }

// AudioChannels returns the current number of channels.
func (s *ScopeData) AudioChannels() int {
	if s == nil {
		return 0
	}
	return len(s.channels)
}

// Channel returns the Channel Data at index i, or nil if i is out of range.
func (s *ScopeData) Channel(i int) *ChannelData {
	if s == nil || i < 0 || i >= len(s.channels) {
		return nil
	}
	return s.channels[i]
}

// resize grows or shrinks the channel array to n entries. Entries below
// min(old, n) are left as they are; new entries are created with alloc and
// dropped entries are released before the array shrinks.
func (s *ScopeData) resize(n int, alloc func() *ChannelData) {
	old := len(s.channels)
	switch {
	case n > old:
		for i := old; i < n; i++ {
			s.channels = append(s.channels, alloc())
		}
	case n < old:
		for i := n; i < old; i++ {
			s.channels[i].release()
			s.channels[i] = nil
		}
		s.channels = s.channels[:n:n]
	}
}

func (s *ScopeData) release() {
	if s == nil {
		return
	}
	s.resize(0, nil)
}
