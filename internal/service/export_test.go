package service

import "time"

// SetClock pins the clock used for shopping list dates.
func (s *ShoppingListService) SetClock(now func() time.Time) {
	s.now = now
}

// SetClock pins the clock used to issue and validate tokens.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// SetClock pins the clock used to expire revocations.
func (d *MemoryDenylist) SetClock(now func() time.Time) {
	d.now = now
}

// SetClock pins the clock used to expire cached tags.
func (s *TagService) SetClock(now func() time.Time) {
	s.now = now
}

// TagCacheTTL is how long a cached tag stays fresh.
const TagCacheTTL = tagCacheTTL
