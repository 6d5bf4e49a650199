package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dhanfinix/sukund/internal/db"
	"github.com/dhanfinix/sukund/internal/http/api"
	"github.com/dhanfinix/sukund/internal/http/api/packets"
	"github.com/dhanfinix/sukund/internal/model"
	"github.com/dhanfinix/sukund/internal/scheduler"
)

type SettingsController struct {
	store db.Store
	sched *scheduler.Scheduler
}

func NewSettingsController(store db.Store, sched *scheduler.Scheduler) *SettingsController {
	return &SettingsController{store: store, sched: sched}
}

func RegisterSettingsRoutes(r *gin.RouterGroup, store db.Store, sched *scheduler.Scheduler) {
	ctl := NewSettingsController(store, sched)
	r.GET("/settings", api.ResolveEndpoint(ctl.getSettings))
	r.PUT("/settings", api.ResolveEndpoint(ctl.updateSettings))
}

func (s *SettingsController) getSettings(ctx *gin.Context) (any, *api.Error) {
	duration, err := s.store.SilenceDuration()
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "failed to read settings"}
	}
	mode, err := s.store.SilenceMode()
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "failed to read settings"}
	}
	lat, lng, name, err := s.store.Location()
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "failed to read settings"}
	}
	method, err := s.store.CalculationMethod()
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "failed to read settings"}
	}

	return packets.SettingsResponse{
		DurationMinutes: duration,
		SilenceMode:     string(mode),
		Latitude:        lat,
		Longitude:       lng,
		LocationName:    name,
		MethodID:        method,
	}, nil
}

func (s *SettingsController) updateSettings(ctx *gin.Context) (any, *api.Error) {
	var request packets.UpdateSettingsRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if request.DurationMinutes != nil {
		minutes := *request.DurationMinutes
		if minutes < minDuration || minutes > maxDuration {
			return nil, &api.Error{Code: http.StatusBadRequest, Message: "duration must be between 5 and 120 minutes"}
		}
		if err := s.store.SetSilenceDuration(minutes); err != nil {
			return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not update duration"}
		}
	}

	if request.SilenceMode != nil {
		if err := s.store.SetSilenceMode(model.ParseSilenceMode(*request.SilenceMode)); err != nil {
			return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not update silence mode"}
		}
	}

	if request.Latitude != nil || request.Longitude != nil {
		if request.Latitude == nil || request.Longitude == nil {
			return nil, &api.Error{Code: http.StatusBadRequest, Message: "latitude and longitude must be set together"}
		}
		name := ""
		if request.LocationName != nil {
			name = *request.LocationName
		}
		if err := s.store.SetLocation(*request.Latitude, *request.Longitude, name); err != nil {
			return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not update location"}
		}
	}

	if request.MethodID != nil {
		if *request.MethodID <= 0 {
			return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid method id"}
		}
		if err := s.store.SetCalculationMethod(*request.MethodID); err != nil {
			return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not update calculation method"}
		}
	}

	// Duration, location and method all change the trigger set.
	rescheduled := true
	if err := s.sched.RefreshAndSchedule(ctx.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("reschedule after settings update failed")
		rescheduled = false
	}
	return gin.H{"message": "settings updated", "rescheduled": rescheduled}, nil
}
