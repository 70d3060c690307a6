package memory

import (
	"gym-statistics/internal/entity"
	"gym-statistics/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// DialogSessionRepository keeps conversations in process memory only.
// Sessions never expire; they end on completion, /cancel or restart.
type DialogSessionRepository struct {
	cache *cache.Cache
}

func NewDialogSessionRepository() contract.DialogSessionRepository {
	return &DialogSessionRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *DialogSessionRepository) Save(session *entity.DialogSession) {
	r.cache.Set(session.Handle, session, cache.NoExpiration)
}

func (r *DialogSessionRepository) Get(handle string) (*entity.DialogSession, bool) {
	if x, found := r.cache.Get(handle); found {
		return x.(*entity.DialogSession), true
	}
	return nil, false
}

func (r *DialogSessionRepository) Delete(handle string) {
	r.cache.Delete(handle)
}
