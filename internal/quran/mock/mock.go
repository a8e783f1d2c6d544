// Package mock provides an in-memory [quran.Provider] for tests.
package mock

import (
	"context"
	"fmt"

	"github.com/mkhalidi/rattil/internal/quran"
)

// Provider serves surahs from a fixed in-memory map.
type Provider struct {
	// Surahs maps chapter number to the surah returned by [Provider.Surah].
	Surahs map[int]quran.Surah

	// Err, when non-nil, is returned by every call.
	Err error
}

// Compile-time interface check.
var _ quran.Provider = (*Provider)(nil)

// New returns a mock provider pre-loaded with the given surahs.
func New(surahs ...quran.Surah) *Provider {
	m := &Provider{Surahs: make(map[int]quran.Surah, len(surahs))}
	for _, s := range surahs {
		m.Surahs[s.Number] = s
	}
	return m
}

// Surah returns the configured surah or an error when absent.
func (m *Provider) Surah(_ context.Context, number int) (quran.Surah, error) {
	if m.Err != nil {
		return quran.Surah{}, m.Err
	}
	s, ok := m.Surahs[number]
	if !ok {
		return quran.Surah{}, fmt.Errorf("%w: number %d", quran.ErrSurahNotFound, number)
	}
	return s, nil
}
