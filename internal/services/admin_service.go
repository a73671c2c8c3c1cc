package services

import (
	"context"
	"strings"

	"whatsapp-support/internal/models"
	"whatsapp-support/internal/utils"
)

type AdminService struct {
	repos Repositories
}

func NewAdminService(repos Repositories) *AdminService {
	return &AdminService{repos: repos}
}

func (s *AdminService) requireAdmin(ctx context.Context, requesterID string) (*models.Admin, error) {
	requester, err := s.repos.Admins.GetByID(ctx, requesterID)
	if err != nil {
		return nil, storeError("buscar administrador", err)
	}
	if requester == nil {
		return nil, models.ForbiddenError("Apenas administradores podem executar esta ação")
	}
	return requester, nil
}

// DeleteAdmin remove outro administrador. As salas criadas por ele ficam sem autor (ON DELETE SET NULL).
func (s *AdminService) DeleteAdmin(ctx context.Context, requesterID, adminID string) error {
	if _, err := s.requireAdmin(ctx, requesterID); err != nil {
		return err
	}
	if requesterID == adminID {
		return models.InvalidInputError("Um administrador não pode remover a si mesmo")
	}

	target, err := s.repos.Admins.GetByID(ctx, adminID)
	if err != nil {
		return storeError("buscar administrador", err)
	}
	if target == nil {
		return models.NotFoundError("Administrador não encontrado")
	}

	if err := s.repos.Admins.Delete(ctx, adminID); err != nil {
		return storeError("remover administrador", err)
	}
	utils.LogInfo("Administrador %s removido por %s", adminID, requesterID)
	return nil
}

func (s *AdminService) CreateSupportRoom(ctx context.Context, req models.CreateSupportRoomRequest) (*models.SupportRoom, error) {
	if _, err := s.requireAdmin(ctx, req.RequesterID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.InvalidInputError("name é obrigatório")
	}

	user, err := s.repos.SupportUsers.GetByID(ctx, req.SupportUserID)
	if err != nil {
		return nil, storeError("buscar usuário de suporte", err)
	}
	if user == nil {
		return nil, models.NotFoundError("Usuário de suporte não encontrado")
	}

	room := &models.SupportRoom{
		Name:          name,
		SupportUserID: user.ID,
		CreatedBy:     req.RequesterID,
	}
	if err := s.repos.Rooms.Save(ctx, room); err != nil {
		return nil, storeError("criar sala", err)
	}
	return room, nil
}
