package endpoints

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dhanfinix/sukund/internal/db"
	"github.com/dhanfinix/sukund/internal/http/api"
	"github.com/dhanfinix/sukund/internal/http/api/packets"
	"github.com/dhanfinix/sukund/internal/model"
	"github.com/dhanfinix/sukund/internal/scheduler"
)

// PrayerSource is the repository surface the prayer endpoints need.
type PrayerSource interface {
	scheduler.TimesProvider
	Refresh(ctx context.Context)
}

type PrayerController struct {
	store db.Store
	times PrayerSource
	sched *scheduler.Scheduler
}

func NewPrayerController(store db.Store, times PrayerSource, sched *scheduler.Scheduler) *PrayerController {
	return &PrayerController{store: store, times: times, sched: sched}
}

func RegisterPrayerRoutes(r *gin.RouterGroup, store db.Store, times PrayerSource, sched *scheduler.Scheduler) {
	ctl := NewPrayerController(store, times, sched)
	r.GET("/prayers", api.ResolveEndpoint(ctl.listPrayers))
	r.PUT("/prayers/:name", api.ResolveEndpoint(ctl.togglePrayer))
	r.POST("/prayers/refresh", api.ResolveEndpoint(ctl.refresh))
}

func (p *PrayerController) listPrayers(ctx *gin.Context) (any, *api.Error) {
	lat, lng, _, err := p.store.Location()
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "failed to read location"}
	}
	method, err := p.store.CalculationMethod()
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "failed to read calculation method"}
	}
	enabled, err := p.store.PrayerEnabled()
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "failed to read prayer toggles"}
	}

	now := time.Now()
	stale := false

	today, err := p.times.DayTimes(ctx.Request.Context(), now, lat, lng, method)
	if err != nil {
		// Placeholder times instead of an error page; the client shows a
		// dismissible message and retries on pull-to-refresh.
		log.Warn().Err(err).Msg("today's times unavailable, serving placeholders")
		today = map[model.PrayerName]string{}
		stale = true
	}
	tomorrow, err := p.times.DayTimes(ctx.Request.Context(), now.AddDate(0, 0, 1), lat, lng, method)
	if err != nil {
		tomorrow = map[model.PrayerName]string{}
		stale = true
	}

	response := packets.PrayerListResponse{
		Date:  now.Format("2006-01-02"),
		Stale: stale,
	}
	for _, name := range model.PrayerNames() {
		timeToday, ok := today[name]
		if !ok {
			timeToday = model.UnknownTime
		}
		timeTomorrow, ok := tomorrow[name]
		if !ok {
			timeTomorrow = model.UnknownTime
		}
		response.Prayers = append(response.Prayers, packets.PrayerResponse{
			Name:         string(name),
			TimeToday:    timeToday,
			TimeTomorrow: timeTomorrow,
			Enabled:      enabled[name],
		})
	}
	return response, nil
}

func (p *PrayerController) togglePrayer(ctx *gin.Context) (any, *api.Error) {
	name, ok := model.ParsePrayerName(ctx.Param("name"))
	if !ok {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "unknown prayer name"}
	}

	var request packets.TogglePrayerRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := p.store.SetPrayerEnabled(name, *request.Enabled); err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not update prayer"}
	}

	rescheduled := true
	if err := p.sched.RefreshAndSchedule(ctx.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("reschedule after toggle failed")
		rescheduled = false
	}
	return gin.H{"name": string(name), "enabled": *request.Enabled, "rescheduled": rescheduled}, nil
}

func (p *PrayerController) refresh(ctx *gin.Context) (any, *api.Error) {
	p.times.Refresh(ctx.Request.Context())
	if err := p.sched.RefreshAndSchedule(ctx.Request.Context()); err != nil {
		return nil, &api.Error{Code: http.StatusBadGateway, Message: "could not refresh prayer times"}
	}
	return gin.H{"message": "refreshed"}, nil
}
