package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dhanfinix/sukund/internal/db"
	"github.com/dhanfinix/sukund/internal/http/api"
	"github.com/dhanfinix/sukund/internal/http/api/packets"
	"github.com/dhanfinix/sukund/internal/scheduler"
)

// Silence duration policy, minutes.
const (
	minDuration = 5
	maxDuration = 120
)

func clampDuration(minutes int) int {
	if minutes < minDuration {
		return minDuration
	}
	if minutes > maxDuration {
		return maxDuration
	}
	return minutes
}

type SilenceController struct {
	store db.Store
	sched *scheduler.Scheduler
}

func NewSilenceController(store db.Store, sched *scheduler.Scheduler) *SilenceController {
	return &SilenceController{store: store, sched: sched}
}

func RegisterSilenceRoutes(r *gin.RouterGroup, store db.Store, sched *scheduler.Scheduler) {
	ctl := NewSilenceController(store, sched)
	r.GET("/status", api.ResolveEndpoint(ctl.status))
	r.POST("/silence", api.ResolveEndpoint(ctl.startManual))
	r.DELETE("/silence", api.ResolveEndpoint(ctl.stop))
}

func (s *SilenceController) status(ctx *gin.Context) (any, *api.Error) {
	win, err := s.store.ActiveWindow()
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "failed to read silence state"}
	}

	now := time.Now()
	if !win.Active(now) {
		return packets.StatusResponse{SilenceActive: false}, nil
	}
	return packets.StatusResponse{
		SilenceActive:    true,
		Label:            win.Label,
		EndUnixMs:        win.End.UnixMilli(),
		RemainingSeconds: int64(win.End.Sub(now).Seconds()),
	}, nil
}

func (s *SilenceController) startManual(ctx *gin.Context) (any, *api.Error) {
	var request packets.ManualSilenceRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	duration := request.DurationMinutes
	if duration == 0 {
		stored, err := s.store.SilenceDuration()
		if err != nil {
			return nil, &api.Error{Code: http.StatusInternalServerError, Message: "failed to read silence duration"}
		}
		duration = stored
	}
	duration = clampDuration(duration)

	// Overwriting an active window loses its snapshot slot ownership, so
	// the client must confirm explicitly.
	win, err := s.store.ActiveWindow()
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "failed to read silence state"}
	}
	if win.Active(time.Now()) && !request.Force {
		return nil, &api.Error{Code: http.StatusConflict, Message: "a silence window is already active; set force to overwrite"}
	}

	s.sched.ScheduleManual(duration)
	log.Info().Int("duration_min", duration).Msg("manual silence started")
	return gin.H{"message": "silence started", "duration_minutes": duration}, nil
}

func (s *SilenceController) stop(ctx *gin.Context) (any, *api.Error) {
	s.sched.StopSilence()
	return gin.H{"message": "silence stopped"}, nil
}
