package handler

import "github.com/julienschmidt/httprouter"

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments", h.Create)
	router.GET("/api/v1/appointments/*path", h.Get)
	router.PUT("/api/v1/appointments/:id", h.Update)
	router.DELETE("/api/v1/appointments/:id", h.Cancel)
	router.PATCH("/api/v1/appointments/:id/confirm", h.Confirm)
	router.PATCH("/api/v1/appointments/:id/decline", h.Decline)
	router.PATCH("/api/v1/appointments/:id/complete", h.Complete)
}
