package handlers

import (
	"net/http"

	"whatsapp-support/internal/models"
	"whatsapp-support/internal/services"
)

type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// @Summary Delete admin
// @Tags admin
// @Accept json
// @Produce json
// @Security ServiceRole
// @Param request body models.DeleteAdminRequest true "Admin"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /delete-admin [post]
func (h *AdminHandler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteAdminRequest
	if err := decodeAndValidate(r, &req); err != nil {
		fail(w, "/delete-admin", err)
		return
	}

	if err := h.admin.DeleteAdmin(r.Context(), req.RequesterID, req.AdminID); err != nil {
		fail(w, "/delete-admin", err)
		return
	}
	ok(w, "Administrador removido com sucesso", map[string]string{"admin_id": req.AdminID})
}

// @Summary Create support room
// @Tags admin
// @Accept json
// @Produce json
// @Security ServiceRole
// @Param request body models.CreateSupportRoomRequest true "Room"
// @Success 200 {object} models.APIResponse{data=models.SupportRoom}
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /create-support-room [post]
func (h *AdminHandler) CreateSupportRoom(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSupportRoomRequest
	if err := decodeAndValidate(r, &req); err != nil {
		fail(w, "/create-support-room", err)
		return
	}

	room, err := h.admin.CreateSupportRoom(r.Context(), req)
	if err != nil {
		fail(w, "/create-support-room", err)
		return
	}
	ok(w, "Sala criada com sucesso", room)
}
