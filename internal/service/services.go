package service

import (
	"go.uber.org/zap"

	"github.com/speechpath/speechpath-server/internal/config"
	"github.com/speechpath/speechpath-server/internal/filestore"
	"github.com/speechpath/speechpath-server/internal/repository"
	"github.com/speechpath/speechpath-server/internal/speech"
	"github.com/speechpath/speechpath-server/internal/worker"
)

type Services struct {
	Auth     *AuthService
	Audio    *AudioService
	Analysis *AnalysisService
	Report   *ReportService
}

type Deps struct {
	Repos       *repository.Repositories
	Files       *filestore.Store
	Transcriber speech.Transcriber
	Analyzer    *speech.Analyzer
	Pool        *worker.Pool
	Notifier    StatusNotifier
	Log         *zap.SugaredLogger
}

func NewServices(cfg *config.Config, deps Deps) *Services {
	return &Services{
		Auth:  NewAuthService(deps.Repos.User, deps.Repos.AuthToken, cfg),
		Audio: NewAudioService(deps.Repos.AudioFile, deps.Files, cfg.MaxUploadBytes()),
		Analysis: NewAnalysisService(
			deps.Repos.Analysis,
			deps.Repos.AudioFile,
			deps.Repos.User,
			deps.Transcriber,
			deps.Analyzer,
			deps.Pool,
			deps.Notifier,
			deps.Log,
		),
		Report: NewReportService(deps.Repos.Report, deps.Repos.Analysis),
	}
}
