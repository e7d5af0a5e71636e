package employee

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
)

// ListMySkills implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListMySkills(ctx context.Context) ([]employee.SkillResponse, error) {
	me, err := s.mine(ctx)
	if err != nil {
		return nil, err
	}
	skills, err := s.profiles.ListSkills(ctx, me.ID)
	if err != nil {
		return nil, err
	}
	resp := make([]employee.SkillResponse, 0, len(skills))
	for _, sk := range skills {
		resp = append(resp, employee.NewSkillResponse(sk))
	}
	return resp, nil
}

// AddMySkill implements employee.EmployeeService. Names are unique per employee, ignoring case.
func (s *EmployeeServiceImpl) AddMySkill(ctx context.Context, req employee.AddSkillRequest) (employee.SkillResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.SkillResponse{}, err
	}
	me, err := s.mine(ctx)
	if err != nil {
		return employee.SkillResponse{}, err
	}

	exists, err := s.profiles.SkillExists(ctx, me.ID, req.Skill)
	if err != nil {
		return employee.SkillResponse{}, fmt.Errorf("failed to check skill: %w", err)
	}
	if exists {
		return employee.SkillResponse{}, employee.ErrSkillExists
	}

	created, err := s.profiles.CreateSkill(ctx, me.ID, req.Skill)
	if err != nil {
		return employee.SkillResponse{}, err
	}
	return employee.NewSkillResponse(created), nil
}

// DeleteMySkill implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeleteMySkill(ctx context.Context, id string) error {
	me, err := s.mine(ctx)
	if err != nil {
		return err
	}
	return s.profiles.DeleteSkill(ctx, me.ID, id)
}

// ListMyCertifications implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListMyCertifications(ctx context.Context) ([]employee.CertificationResponse, error) {
	me, err := s.mine(ctx)
	if err != nil {
		return nil, err
	}
	certs, err := s.profiles.ListCertifications(ctx, me.ID)
	if err != nil {
		return nil, err
	}
	resp := make([]employee.CertificationResponse, 0, len(certs))
	for _, c := range certs {
		resp = append(resp, employee.NewCertificationResponse(c))
	}
	return resp, nil
}

// AddMyCertification implements employee.EmployeeService.
func (s *EmployeeServiceImpl) AddMyCertification(ctx context.Context, req employee.AddCertificationRequest) (employee.CertificationResponse, error) {
	cert, err := req.Certification()
	if err != nil {
		return employee.CertificationResponse{}, err
	}
	me, err := s.mine(ctx)
	if err != nil {
		return employee.CertificationResponse{}, err
	}

	cert.EmployeeID = me.ID
	created, err := s.profiles.CreateCertification(ctx, cert)
	if err != nil {
		return employee.CertificationResponse{}, err
	}
	return employee.NewCertificationResponse(created), nil
}

// UpdateMyCertification implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateMyCertification(ctx context.Context, id string, req employee.UpdateCertificationRequest) (employee.CertificationResponse, error) {
	fields, err := req.Fields()
	if err != nil {
		return employee.CertificationResponse{}, err
	}
	me, err := s.mine(ctx)
	if err != nil {
		return employee.CertificationResponse{}, err
	}

	updated, err := s.profiles.UpdateCertification(ctx, me.ID, id, fields)
	if err != nil {
		return employee.CertificationResponse{}, err
	}
	return employee.NewCertificationResponse(updated), nil
}

// DeleteMyCertification implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeleteMyCertification(ctx context.Context, id string) error {
	me, err := s.mine(ctx)
	if err != nil {
		return err
	}
	return s.profiles.DeleteCertification(ctx, me.ID, id)
}

func (s *EmployeeServiceImpl) privateInfo(ctx context.Context, employeeID string) (employee.PrivateInfoResponse, error) {
	personal, err := s.profiles.GetPersonalInfo(ctx, employeeID)
	if err != nil {
		return employee.PrivateInfoResponse{}, err
	}
	bank, err := s.profiles.GetBankDetails(ctx, employeeID)
	if err != nil {
		return employee.PrivateInfoResponse{}, err
	}
	return employee.NewPrivateInfoResponse(personal, bank), nil
}

// GetMyPrivateInfo implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetMyPrivateInfo(ctx context.Context) (employee.PrivateInfoResponse, error) {
	me, err := s.mine(ctx)
	if err != nil {
		return employee.PrivateInfoResponse{}, err
	}
	return s.privateInfo(ctx, me.ID)
}

// UpdateMyPrivateInfoSensitive implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateMyPrivateInfoSensitive(ctx context.Context, req employee.UpdateSensitiveInfoRequest) (employee.PrivateInfoResponse, error) {
	personal, bank, err := req.Split()
	if err != nil {
		return employee.PrivateInfoResponse{}, err
	}
	me, err := s.mine(ctx)
	if err != nil {
		return employee.PrivateInfoResponse{}, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.profiles.UpdatePersonalInfo(ctx, me.ID, personal); err != nil {
			return err
		}
		return s.profiles.UpsertBankDetails(ctx, me.ID, bank)
	})
	if err != nil {
		return employee.PrivateInfoResponse{}, fmt.Errorf("failed to update private info: %w", err)
	}
	// Gender and address are part of the cached employee record.
	s.forget(me)
	slog.Info("private info updated", "employee_id", me.ID, "personal_fields", len(personal), "bank_fields", len(bank))

	return s.privateInfo(ctx, me.ID)
}
