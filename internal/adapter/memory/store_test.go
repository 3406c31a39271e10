package memory

import (
	"testing"

	"github.com/couchcryptid/breathing-rivers/internal/adapter/storetest"
	"github.com/couchcryptid/breathing-rivers/internal/domain"
)

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Repository {
		return NewStore()
	})
}
