package handlers

import (
	"github.com/geocoder89/campushub/internal/http/middlewares"
	"github.com/geocoder89/campushub/internal/utils"
	"github.com/gin-gonic/gin"
)

// pathID reads a uuid path parameter and answers 400 when it is malformed.
func pathID(ctx *gin.Context, name string) (string, bool) {
	id := ctx.Param(name)
	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "invalid_id", gin.H{"param": name})
		return "", false
	}
	return id, true
}

func bookingPathID(ctx *gin.Context) (string, bool) {
	id, ok := pathID(ctx, "id")
	if ok {
		ctx.Set(middlewares.CtxBookingID, id)
	}
	return id, ok
}
