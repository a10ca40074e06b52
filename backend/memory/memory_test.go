package memory

import (
	"testing"

	"github.com/dev3-labs/assetsnap/snapshot"
)

func TestInMemorySnapshots(t *testing.T) {
	snapshot.RunRepositoryTests(t, snapshot.NamedRepositoryFactory{
		ImplementationName: "memory",
		Open: func(*testing.T, string) snapshot.Repository {
			return NewSnapshots()
		},
	})
}

func TestInMemoryTrees(t *testing.T) {
	snapshot.RunTreeRepositoryTests(t, snapshot.NamedTreeRepositoryFactory{
		ImplementationName: "memory",
		Open: func(*testing.T, string) snapshot.TreeRepository {
			return NewTrees()
		},
	})
}
