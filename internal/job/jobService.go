package job

import (
	"github.com/apatwari/docchat/internal/domain/jobmodel"
)

type Service struct {
	JobChannel        chan jobmodel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobmodel.JobStore
	SessionStore      jobmodel.SessionStore
}

type ServiceConfig struct {
	JobChannel        chan jobmodel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobmodel.JobStore
	SessionStore      jobmodel.SessionStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		SessionStore:      cfg.SessionStore,
	}
}
