package config

import "sync"

// LiveSettings is the hot-reloadable slice of configuration. The file
// watcher replaces its contents on each accepted reload; consumers read a
// fresh snapshot through the accessors on every use instead of holding a
// value copy from startup.
type LiveSettings struct {
	mu         sync.RWMutex
	rateLimit  RateLimitConfig
	logLevel   string
	levelHooks []func(level string)
}

// NewLiveSettings seeds the holder with the startup values.
func NewLiveSettings(rateLimit RateLimitConfig, logLevel string) *LiveSettings {
	return &LiveSettings{rateLimit: rateLimit, logLevel: logLevel}
}

// RateLimit returns the current rate-limit settings. The returned value
// shares its rules map with the snapshot; Apply swaps the map wholesale and
// never mutates it in place, so readers stay race-free.
func (s *LiveSettings) RateLimit() RateLimitConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rateLimit
}

// LogLevel returns the current log level name.
func (s *LiveSettings) LogLevel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logLevel
}

// OnLogLevelChange registers a hook invoked with the new level name after
// every reload that changes it.
func (s *LiveSettings) OnLogLevelChange(fn func(level string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levelHooks = append(s.levelHooks, fn)
}

// Apply installs reloaded values. Level hooks fire outside the lock.
func (s *LiveSettings) Apply(rateLimit RateLimitConfig, logLevel string) {
	s.mu.Lock()
	levelChanged := logLevel != s.logLevel
	s.rateLimit = rateLimit
	s.logLevel = logLevel
	hooks := s.levelHooks
	s.mu.Unlock()

	if levelChanged {
		for _, fn := range hooks {
			fn(logLevel)
		}
	}
}
