package repo_test

import (
	"testing"

	"github.com/hamed0406/portwatch/internal/repo"
	"github.com/hamed0406/portwatch/internal/repo/file"
	"github.com/hamed0406/portwatch/internal/repo/memory"
)

// Compile-time interface satisfaction checks.
// Using external test package avoids import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ repo.CounterStore = memory.New(0)
	var _ repo.CounterStore = (*file.Store)(nil)
}
