package controllers

import (
	"net/http"

	"github.com/angelmondragon/attribution-backend/api/responses"
	"github.com/angelmondragon/attribution-backend/pkg/logger"
)

// PipelineTrigger requests an out-of-schedule pipeline cycle.
type PipelineTrigger interface {
	Trigger()
}

// TriggerRun queues an immediate pipeline run. The cycle executes on the
// worker loop, so the response only acknowledges the request.
func TriggerRun(logg *logger.Logger, pipeline PipelineTrigger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pipeline.Trigger()
		if logg != nil {
			logg.Info(r.Context(), "manual pipeline run requested")
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "queued"})
	}
}
