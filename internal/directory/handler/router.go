package handler

import "github.com/julienschmidt/httprouter"

// meAlias stands in for the caller's own id in any profile route.
const meAlias = "me"

func (h *DirectoryHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/caregivers", h.SearchCaregivers)
	router.GET("/api/v1/caregivers/:id", h.GetCaregiver)
	router.PUT("/api/v1/caregivers/:id", h.UpdateCaregiver)

	router.GET("/api/v1/members/:id", h.GetMember)
	router.PUT("/api/v1/members/:id", h.UpdateMember)
	router.GET("/api/v1/members/:id/address", h.GetPrimaryAddress)
	router.PUT("/api/v1/members/:id/address", h.PutPrimaryAddress)
	router.DELETE("/api/v1/members/:id/address", h.DeletePrimaryAddress)
}
