package contract

import "gym-statistics/internal/entity"

type DialogSessionRepository interface {
	Get(handle string) (*entity.DialogSession, bool)
	Save(session *entity.DialogSession)
	Delete(handle string)
}
