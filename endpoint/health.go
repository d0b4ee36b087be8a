package endpoint

import (
	"context"
	"time"

	"github.com/ariebrainware/patient-registry/util"
	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *store.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck godoc
// @Summary      Store health
// @Tags         Health
// @Produce      json
// @Success      200 {object} util.APIResponse "Store reachable"
// @Failure      503 {object} util.APIResponse "Store unreachable"
// @Router       /healthz [get]
func HealthCheck(p Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			util.CallServiceUnavailable(c, util.APIErrorParams{
				Msg: "Store unavailable",
				Err: err,
			})
			return
		}
		util.CallSuccessOK(c, util.APISuccessParams{
			Msg:  "OK",
			Data: map[string]string{"status": "ok"},
		})
	}
}
